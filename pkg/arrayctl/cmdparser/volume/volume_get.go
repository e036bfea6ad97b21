package volume

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/arrayctl/formatter"
	"github.com/hwameistor/array-csi/pkg/arrayctl/manager"
)

var (
	pool string
	byID bool
)

var volumeGet = &cobra.Command{
	Use:     "get {volumeName|volumeID}",
	Args:    cobra.ExactArgs(1),
	Short:   "Get the volume's detail information.",
	Long:    "Get the volume's detail information and the hosts it is mapped to.",
	Example: "arrayctl volume get pvc-1187f716 --pool pool1 -e 10.0.0.1\narrayctl volume get 6005076810810262E800000000000A1B --id -e 10.0.0.1",
	RunE:    volumeGetRunE,
}

func init() {
	volumeGet.Flags().StringVar(&pool, "pool", "", "Pool of the volume")
	volumeGet.Flags().BoolVar(&byID, "id", false, "Look the volume up by its id")
}

func volumeGetRunE(_ *cobra.Command, args []string) error {
	return manager.NewArrayManager().Do(func(mediator array.Mediator) error {
		var (
			volume *array.Volume
			err    error
		)
		if byID {
			volume, err = mediator.GetVolumeByID(args[0])
		} else {
			volume, err = mediator.GetVolume(args[0], pool)
		}
		if err != nil {
			return err
		}
		mappings, err := mediator.GetVolumeMappings(volume.ID)
		if err != nil {
			return err
		}
		hasSnapshots, err := mediator.IsVolumeHasSnapshots(volume.ID)
		if err != nil {
			return err
		}
		printVolume(volume, hasSnapshots, mappings)
		return nil
	})
}

func printVolume(volume *array.Volume, hasSnapshots bool, mappings map[string]int) {
	source := "-"
	if volume.CopySourceID != "" {
		source = fmt.Sprintf("%s %s", volume.CopySourceKind, volume.CopySourceID)
	}
	formatter.PrintParameters("Volume parameters", []formatter.Parameter{
		{Key: "Name", Value: volume.Name},
		{Key: "ID", Value: volume.ID},
		{Key: "InternalID", Value: volume.InternalID},
		{Key: "Capacity", Value: formatter.FormatBytesToSize(volume.CapacityBytes)},
		{Key: "Pool", Value: volume.Pool},
		{Key: "ArrayType", Value: volume.ArrayType},
		{Key: "SpaceEfficiency", Value: volume.SpaceEfficiency},
		{Key: "HasSnapshots", Value: hasSnapshots},
		{Key: "Source", Value: source},
	})

	hosts := make([]string, 0, len(mappings))
	for host := range mappings {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	rows := make([]table.Row, len(hosts))
	for i, host := range hosts {
		rows[i] = table.Row{i + 1, host, mappings[host]}
	}
	formatter.PrintTable("Volume mappings", table.Row{"#", "Host", "LUN"}, rows)
}
