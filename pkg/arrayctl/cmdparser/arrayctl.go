package cmdparser

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/definitions"
	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/detect"
	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/host"
	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/snapshot"
	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/volume"
)

var Arrayctl = &cobra.Command{
	Use:   "arrayctl",
	Args:  cobra.ExactArgs(0),
	Short: "Arrayctl inspects the block arrays behind the CSI controller.",
	Long: "Arrayctl talks to A9000, DS8K and SVC arrays with the same mediators the\n" +
		"CSI controller uses, to check what the controller would see.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if definitions.Debug {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetOutput(io.Discard)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	// Arrayctl flags
	flags := Arrayctl.PersistentFlags()
	flags.BoolVar(&definitions.Debug, "debug", false, "Enable debug mode")
	flags.StringVarP(&definitions.Username, "username", "u", "", "Array user, $"+definitions.EnvUsername+" by default")
	flags.StringVarP(&definitions.Password, "password", "p", "", "Array password, $"+definitions.EnvPassword+" by default")
	flags.StringSliceVarP(&definitions.Endpoints, "endpoints", "e", nil, "Management addresses of the array")
	flags.StringVar(&definitions.ArrayType, "array-type", "", "Array type (A9000, DS8K or SVC), detected when empty")
	flags.DurationVar(&definitions.Timeout, "timeout", 3*time.Second, "Set the probe timeout")

	// Sub commands
	Arrayctl.AddCommand(detect.Detect, volume.Volume, snapshot.Snapshot, host.Host)
}
