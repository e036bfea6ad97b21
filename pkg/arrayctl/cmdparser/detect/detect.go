package detect

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/definitions"
	"github.com/hwameistor/array-csi/pkg/arrayctl/formatter"
	"github.com/hwameistor/array-csi/pkg/arrayctl/manager"
)

var Detect = &cobra.Command{
	Use:     "detect",
	Args:    cobra.ExactArgs(0),
	Short:   "Detect the array type behind the endpoints.",
	Long:    "Detect the array type by probing the management port of every supported array type in order.",
	Example: "arrayctl detect --endpoints 10.0.0.1,10.0.0.2",
	RunE:    detectRunE,
}

func detectRunE(_ *cobra.Command, _ []string) error {
	arrayType, err := manager.NewArrayManager().Detect(definitions.Endpoints)
	if err != nil {
		return err
	}

	rows := make([]table.Row, 0, len(definitions.Endpoints))
	for i, endpoint := range definitions.Endpoints {
		rows = append(rows, table.Row{i + 1, endpoint, arrayType})
	}
	formatter.PrintTable("Storage system", table.Row{"#", "Endpoint", "ArrayType"}, rows)
	return nil
}
