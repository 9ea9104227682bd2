package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/state"
	"github.com/kbukum/restkit/version"
)

const appName = "restkit"

// app carries what the root command resolved for its subcommands.
type app struct {
	configFile string
	envFile    string
	logLevel   string
	baseURL    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "restkit",
		Short: "REST toolkit: requests, resources and a mock API",
		Long: `restkit sends HTTP requests through the restkit request engine.

Configuration is read from restkit.yml (or --config), .env and RESTKIT_*
environment variables.

Examples:
  restkit request http://localhost:5980/users
  restkit request -X POST -d '{"name":"ada"}' /users
  restkit fetch users 7 --filter name
  restkit health --base-url http://localhost:5980
  restkit mock --port 5980`,
		Version:           version.Get().String(),
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load environment variables from file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logging.level")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Override base_url")

	root.AddCommand(newRequestCmd(a), newFetchCmd(a), newHealthCmd(a), newMockCmd())
	return root
}

// load resolves configuration and installs the global logger.
func (a *app) load(cmd *cobra.Command, args []string) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	cfg, err := config.LoadClient(appName, opts...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	logger.Init(cfg.Logging)
	a.cfg = cfg
	return nil
}

// withClient runs fn with a started client and stops it afterwards.
func (a *app) withClient(ctx context.Context, fn func(*rest.Client) error) error {
	return a.withRegistry(ctx, func(c *rest.Client, _ *component.Registry) error {
		return fn(c)
	})
}

// withRegistry is withClient for callers that also report on the registry.
func (a *app) withRegistry(ctx context.Context, fn func(*rest.Client, *component.Registry) error) (err error) {
	client, err := rest.NewClient(a.cfg)
	if err != nil {
		return err
	}
	reg := component.NewRegistry()
	if err := reg.Register(client); err != nil {
		return err
	}
	if err := reg.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := reg.StopAll(context.WithoutCancel(ctx)); err == nil {
			err = stopErr
		}
	}()
	return fn(client, reg)
}

// printResult writes v, narrowed by a JMESPath filter when one is given.
// Strings print raw, everything else as indented JSON.
func printResult(w io.Writer, v any, filter string) error {
	if filter != "" {
		found, err := state.NewStore(v).Search(filter)
		if err != nil {
			return fmt.Errorf("invalid filter %q: %w", filter, err)
		}
		v = found
	}
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
