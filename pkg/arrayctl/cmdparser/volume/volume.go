package volume

import (
	"github.com/spf13/cobra"
)

var Volume = &cobra.Command{
	Use:   "volume",
	Args:  cobra.ExactArgs(0),
	Short: "Inspect the array's volumes.",
	Long:  "Inspect the array's volumes by name or by id, with their host mappings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	// Volume sub commands
	Volume.AddCommand(volumeGet)
}
