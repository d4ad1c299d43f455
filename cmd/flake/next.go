package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceyewan/flake/clog"
)

func newNextCmd(flags *globalFlags) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Generate new ids, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be positive, got %d", count)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			return a.run(ctx, func(a *app) error {
				out := cmd.OutOrStdout()
				for i := 0; i < count; i++ {
					id, err := a.gen.NextContext(ctx)
					if err != nil {
						a.logger.Error("generate id failed", clog.Int("index", i), clog.Error(err))
						return err
					}
					fmt.Fprintln(out, id)
				}
				a.logger.Debug("ids generated", clog.Int("count", count), clog.Int64("node_id", a.gen.NodeID()))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of ids to generate")
	return cmd
}
