package logger

import (
	"fmt"
	"slices"
	"strings"
)

// Accepted values for Config fields.
var (
	Levels  = []string{"trace", "debug", "info", "warn", "error", "disabled"}
	Formats = []string{"json", "console"}
	Outputs = []string{"stderr", "stdout"}
)

// Config is the logging section of the client configuration.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stderr or stdout. Request output goes to stdout in the
	// CLI, so logs default to stderr.
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
}

// ApplyDefaults fills empty fields and normalizes casing. Timestamps are
// always on.
func (c *Config) ApplyDefaults() {
	c.Level = orDefault(c.Level, "info")
	c.Format = orDefault(c.Format, "console")
	c.Output = orDefault(c.Output, "stderr")
	c.Timestamp = true
}

func orDefault(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

// Validate rejects values outside Levels, Formats and Outputs. An empty
// Output is accepted.
func (c *Config) Validate() error {
	if !slices.Contains(Levels, c.Level) {
		return fmt.Errorf("logging.level %q is not one of %s", c.Level, strings.Join(Levels, ", "))
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("logging.format %q is not one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if c.Output != "" && !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("logging.output %q is not one of %s", c.Output, strings.Join(Outputs, ", "))
	}
	return nil
}
