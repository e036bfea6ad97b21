package host

import (
	"github.com/spf13/cobra"
)

var Host = &cobra.Command{
	Use:   "host",
	Args:  cobra.ExactArgs(0),
	Short: "Inspect the array's hosts.",
	Long:  "Inspect which array host a node's initiators resolve to and how it connects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	Host.AddCommand(hostGet)
}
