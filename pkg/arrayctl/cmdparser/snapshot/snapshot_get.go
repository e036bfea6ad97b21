package snapshot

import (
	"github.com/spf13/cobra"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/arrayctl/formatter"
	"github.com/hwameistor/array-csi/pkg/arrayctl/manager"
)

var snapshotGet = &cobra.Command{
	Use:     "get {snapshotID}",
	Args:    cobra.ExactArgs(1),
	Short:   "Get the snapshot's detail information.",
	Long:    "Get the snapshot's detail information.",
	Example: "arrayctl snapshot get 0001 -e 10.0.0.1",
	RunE:    snapshotGetRunE,
}

func snapshotGetRunE(_ *cobra.Command, args []string) error {
	return manager.NewArrayManager().Do(func(mediator array.Mediator) error {
		snapshot, err := mediator.GetSnapshotByID(args[0])
		if err != nil {
			return err
		}
		formatter.PrintParameters("Snapshot parameters", []formatter.Parameter{
			{Key: "Name", Value: snapshot.Name},
			{Key: "ID", Value: snapshot.ID},
			{Key: "SourceVolume", Value: snapshot.SourceVolumeID},
			{Key: "Capacity", Value: formatter.FormatBytesToSize(snapshot.CapacityBytes)},
			{Key: "Ready", Value: snapshot.IsReady},
			{Key: "CreateTime", Value: formatter.FormatTime(snapshot.CreationTime)},
		})
		return nil
	})
}
