package formatter

import (
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hwameistor/array-csi/pkg/utils"
)

// ParameterTableLineLength the length for each line about parameter table
const ParameterTableLineLength = 4

// Output receives the rendered tables
var Output io.Writer = os.Stdout

type Parameter struct {
	Key   interface{}
	Value interface{}
}

func buildDefaultTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(Output)

	// Set the header's format
	t.Style().Format.Header = text.FormatDefault
	return t
}

func PrintParameters(title string, parameters []Parameter) {
	t := buildDefaultTable()

	if title != "" {
		t.SetTitle(title)
	}

	// Get the length of the rows
	length := len(parameters) / ParameterTableLineLength
	if len(parameters)%ParameterTableLineLength != 0 {
		length++
	}
	rows := make([]table.Row, length)

	// Parse parameter values to the table rows
	rowIndex, rowLength := 0, 0
	for _, parameter := range parameters {
		if rowLength == ParameterTableLineLength {
			// set length to 0, and switch to next row
			rowIndex, rowLength = rowIndex+1, 0
		}
		rows[rowIndex], rowLength = append(rows[rowIndex], parameter.Key, parameter.Value), rowLength+1
		if rowLength != ParameterTableLineLength {
			rows[rowIndex] = append(rows[rowIndex], " ")
		}
	}
	t.AppendRows(rows)
	t.Render()
}

func PrintTable(title string, header table.Row, rows []table.Row) {
	t := buildDefaultTable()
	// Set the table's title
	if title != "" {
		t.SetTitle(title)
	}
	// Set the table's header and rows
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

func FormatBytesToSize(bytes int64) string {
	return utils.ConvertBytesToStr(bytes)
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
