package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd 构建根命令及全部子命令
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "flake",
		Short: "Generate and inspect coordination-free Snowflake ids.",
		Long: `flake generates 64-bit Snowflake ids (41-bit timestamp, 10-bit node id, ` +
			`12-bit sequence) with a node id derived from the host MAC address, ` +
			`and decodes existing ids back into their parts.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 0 是合法的节点 ID，只能通过 Changed 判断是否显式指定
			flags.nodeIDSet = cmd.Flags().Changed("node-id")
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flags.envPrefix, "env-prefix", "FLAKE", "environment variable prefix")
	pf.Int64Var(&flags.nodeID, "node-id", 0, "node id override in [0, 1023], derived from the host when unset")
	pf.StringVar(&flags.method, "method", "", "node id source: mac | ip | static")

	root.AddCommand(
		newNextCmd(flags),
		newDecodeCmd(flags),
		newNodeCmd(flags),
	)
	return root
}
