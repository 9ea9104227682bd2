package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/rest"
)

// healthReport is what the health command prints.
type healthReport struct {
	Probe      int                `json:"probe_status"`
	Components []component.Health `json:"components"`
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the base URL with OPTIONS and report component health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withRegistry(ctx, func(c *rest.Client, reg *component.Registry) error {
				status, err := c.Probe(ctx)
				if err != nil {
					return fmt.Errorf("probe %s: %w", c.Config().BaseURL, err)
				}
				report := healthReport{Probe: status, Components: reg.HealthAll(ctx)}
				if err := printResult(cmd.OutOrStdout(), report, ""); err != nil {
					return err
				}
				for _, h := range report.Components {
					if !h.OK() {
						return fmt.Errorf("%s is %s: %s", h.Name, h.Status, h.Message)
					}
				}
				return nil
			})
		},
	}
}
