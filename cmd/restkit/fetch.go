package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/request"
	"github.com/kbukum/restkit/rest"
)

func newFetchCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "fetch <service> [id]",
		Short: "Fetch a collection, or one entity of it, through a REST service",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withClient(ctx, func(c *rest.Client) error {
				svc, err := c.Service(args[0])
				if err != nil {
					return err
				}
				var fut *request.Future
				if len(args) == 2 {
					fut, err = svc.Select(ctx, args[1])
				} else {
					fut, err = svc.Get(ctx, nil)
				}
				if err != nil {
					return err
				}
				v, err := fut.Wait(ctx)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), v, filter)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "JMESPath filter applied to the result")
	return cmd
}
