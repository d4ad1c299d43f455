package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNodeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "node",
		Short: "Show the node id this host resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			return a.run(ctx, func(a *app) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "node_id=%d\tsource=%s\tepoch=%d\n",
					a.gen.NodeID(), a.gen.NodeSource(), a.gen.Epoch())
				return err
			})
		},
	}
}
