package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/xerrors"
)

// decodedID decode 命令的 JSON 输出
type decodedID struct {
	ID string `json:"id"`
	idgen.Decoded
	Time string `json:"time"`
}

func newDecodeCmd(flags *globalFlags) *cobra.Command {
	var (
		epoch  int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "decode <id>...",
		Short: "Decode ids into timestamp, node id and sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("epoch") {
				cfg, err := loadConfig(cmd.Context(), flags)
				if err != nil {
					return err
				}
				epoch = cfg.IDGen.Epoch
				if epoch == 0 {
					epoch = idgen.DefaultEpoch
				}
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return xerrors.Wrapf(err, "invalid id %q", arg)
				}

				d := idgen.Decode(id, epoch)
				if asJSON {
					if err := enc.Encode(decodedID{
						ID:      arg,
						Decoded: d,
						Time:    d.Time().Format(time.RFC3339Nano),
					}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s\ttimestamp=%d\ttime=%s\tnode_id=%d\tsequence=%d\n",
					arg, d.Timestamp, d.Time().Format(time.RFC3339Nano), d.NodeID, d.Sequence)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&epoch, "epoch", idgen.DefaultEpoch, "epoch in unix milliseconds")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per id")
	return cmd
}
