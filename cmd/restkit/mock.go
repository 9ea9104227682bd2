package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/internal/mockapi"
	"github.com/kbukum/restkit/logger"
)

func newMockCmd() *cobra.Command {
	cfg := mockapi.Config{}
	var seed string
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory REST API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			store := mockapi.NewStore()
			if seed != "" {
				if err := loadSeed(store, seed); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mockapi.New(cfg, store, logger.GetGlobalLogger())
			reg := component.NewRegistry()
			if err := reg.Register(srv); err != nil {
				return err
			}
			if err := reg.StartAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), srv.URL())

			<-ctx.Done()
			return reg.StopAll(context.WithoutCancel(ctx))
		},
	}
	cmd.Flags().StringVar(&cfg.Host, "host", "127.0.0.1", "Listen host")
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", 5980, "Listen port, 0 for any free port")
	cmd.Flags().StringVar(&seed, "seed", "", `JSON file of collections: {"users": [{"id": "1"}]}`)
	return cmd
}

func loadSeed(store *mockapi.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed: %w", err)
	}
	var collections map[string][]mockapi.Item
	if err := json.Unmarshal(data, &collections); err != nil {
		return fmt.Errorf("failed to parse seed %s: %w", path, err)
	}
	for name, items := range collections {
		store.Seed(name, items...)
	}
	return nil
}
