package snapshot

import (
	"github.com/spf13/cobra"
)

var Snapshot = &cobra.Command{
	Use:   "snapshot",
	Args:  cobra.ExactArgs(0),
	Short: "Inspect the array's snapshots.",
	Long:  "Inspect the array's snapshots by id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	Snapshot.AddCommand(snapshotGet)
}
