package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != "restkit" {
		t.Errorf("expected name 'restkit', got %q", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if cfg.Type != "application/json" {
		t.Errorf("expected type application/json, got %q", cfg.Type)
	}
	if cfg.Charset != "UTF-8" {
		t.Errorf("expected charset UTF-8, got %q", cfg.Charset)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout)
	}
	if cfg.Tracing.ServiceName != "restkit" {
		t.Errorf("expected tracing service name to follow name, got %q", cfg.Tracing.ServiceName)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"valid base url", func(c *Config) { c.BaseURL = "http://localhost:8080/api" }, ""},
		{"invalid base url", func(c *Config) { c.BaseURL = "http://a" }, "base_url"},
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, "config.logging"},
		{"invalid sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "sample_rate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "restkit.yml", `
name: users-client
environment: staging
base_url: http://localhost:5980/api
timeout: 5s
headers:
  X-Team: core
logging:
  level: debug
  format: json
`)

	var cfg Config
	if err := Load("restkit", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "users-client" {
		t.Errorf("expected name 'users-client', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.BaseURL != "http://localhost:5980/api" {
		t.Errorf("expected base url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout)
	}
	if cfg.Headers["x-team"] != "core" {
		// viper lower-cases map keys
		t.Errorf("expected header x-team=core, got %v", cfg.Headers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "restkit.yml", "name: from-file\nbase_url: http://localhost/a\n")

	t.Setenv("RESTKIT_BASE_URL", "http://localhost/b")
	t.Setenv("RESTKIT_LOGGING_LEVEL", "warn")

	var cfg Config
	if err := Load("restkit", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "from-file" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.BaseURL != "http://localhost/b" {
		t.Errorf("expected env to override base url, got %q", cfg.BaseURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env to set nested logging level, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "RESTKIT_CHARSET=ISO-8859-1\n")
	t.Cleanup(func() { os.Unsetenv("RESTKIT_CHARSET") })

	var cfg Config
	if err := Load("restkit", &cfg, WithConfigFile(filepath.Join(dir, "missing.yml")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Charset != "ISO-8859-1" {
		t.Errorf("expected charset from .env, got %q", cfg.Charset)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	err := Load("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing files, got %v", err)
	}
}

func TestLoadRejectsNonStruct(t *testing.T) {
	var s string
	if err := Load("restkit", &s, WithFileSystem(&mockFS{})); err == nil {
		t.Fatal("expected error for non-struct target")
	}
}

func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "restkit.yml", "base_url: http://a\n")

	if _, err := LoadClient("restkit", WithConfigFile(path)); err == nil {
		t.Fatal("expected validation error for invalid base url")
	}

	path = writeFile(t, dir, "ok.yml", "base_url: http://localhost:9000\n")
	cfg, err := LoadClient("svc", WithConfigFile(path))
	if err != nil {
		t.Fatalf("LoadClient failed: %v", err)
	}
	if cfg.Name != "svc" {
		t.Errorf("expected name to default to 'svc', got %q", cfg.Name)
	}
	if cfg.Type != DefaultType {
		t.Errorf("expected default type, got %q", cfg.Type)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"config/restkit.yml": true,
		".env":               true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("restkit", LoaderConfig{})
	if files.ConfigFile != "config/restkit.yml" {
		t.Errorf("expected config file at config/restkit.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected env file .env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"restkit.yml": true}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("restkit", LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/.env"})
	if files.ConfigFile != "/etc/x.yml" || files.EnvFile != "/etc/.env" {
		t.Errorf("expected explicit paths, got %+v", files)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
