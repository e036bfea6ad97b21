package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/attach"
	"github.com/hwameistor/array-csi/pkg/arrayctl/formatter"
	"github.com/hwameistor/array-csi/pkg/arrayctl/manager"
)

var (
	iqn  string
	wwns []string
)

var hostGet = &cobra.Command{
	Use:     "get [nodeID]",
	Args:    cobra.MaximumNArgs(1),
	Short:   "Get the array host of a node.",
	Long:    "Get the array host owning a node's initiators, given as a CSI node id or with --iqn and --wwns.",
	Example: "arrayctl host get 'node1;iqn.1994-05.com.redhat:1;' -e 10.0.0.1\narrayctl host get --wwns 10000000c9aaaaaa -e 10.0.0.1",
	RunE:    hostGetRunE,
}

func init() {
	hostGet.Flags().StringVar(&iqn, "iqn", "", "iSCSI initiator name of the node")
	hostGet.Flags().StringSliceVar(&wwns, "wwns", nil, "FC port WWNs of the node")
}

func initiatorsFromArgs(args []string) (array.Initiators, error) {
	if len(args) == 1 {
		node, err := array.ParseNodeID(args[0])
		if err != nil {
			return array.Initiators{}, err
		}
		return node.Initiators, nil
	}
	initiators := array.NewInitiators(iqn, wwns)
	if initiators.ISCSIIQN == "" && len(initiators.FCWWNs) == 0 {
		return array.Initiators{}, fmt.Errorf("a node id, --iqn or --wwns is required")
	}
	return initiators, nil
}

func hostGetRunE(_ *cobra.Command, args []string) error {
	initiators, err := initiatorsFromArgs(args)
	if err != nil {
		return err
	}
	return manager.NewArrayManager().Do(func(mediator array.Mediator) error {
		hostName, connectivityTypes, err := mediator.GetHostByHostIdentifiers(initiators)
		if err != nil {
			return err
		}
		connectivity, err := attach.ChooseConnectivityType(connectivityTypes)
		if err != nil {
			return err
		}

		var targets []table.Row
		switch connectivity {
		case array.ConnectivityTypeFC:
			arrayWWNs, err := mediator.GetArrayFCWWNs(hostName)
			if err != nil {
				return err
			}
			for _, wwn := range arrayWWNs {
				targets = append(targets, table.Row{len(targets) + 1, wwn, "-"})
			}
		case array.ConnectivityTypeISCSI:
			byIQN, err := mediator.GetISCSITargetsByIQN()
			if err != nil {
				return err
			}
			iqns := make([]string, 0, len(byIQN))
			for targetIQN := range byIQN {
				iqns = append(iqns, targetIQN)
			}
			sort.Strings(iqns)
			for _, targetIQN := range iqns {
				targets = append(targets, table.Row{len(targets) + 1, targetIQN, strings.Join(byIQN[targetIQN], ",")})
			}
		}

		formatter.PrintParameters("Host", []formatter.Parameter{
			{Key: "Name", Value: hostName},
			{Key: "Connectivity", Value: connectivity},
			{Key: "IQN", Value: initiators.ISCSIIQN},
			{Key: "WWNs", Value: strings.Join(initiators.FCWWNs, ",")},
		})
		formatter.PrintTable("Array targets", table.Row{"#", "Target", "Portals"}, targets)
		return nil
	})
}
