package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/halvard/dbf3/pkg/store"
)

var (
	exportFormat string
	exportOut    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export live rows as CSV or JSON lines",
	Long: `Export all live rows of a table. Deleted rows are skipped.

CSV output starts with a header row of field names. JSON output is
one object per line, keyed by field name.

Example:
  dbf3 export people.dbf --format csv > people.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := openTable(args[0])
		if err != nil {
			return err
		}
		defer table.Close()

		var out io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "csv":
			return exportCSV(out, table)
		case "json":
			return exportJSON(out, table)
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
		}
	},
}

func exportCSV(out io.Writer, table *store.Table) error {
	w := csv.NewWriter(out)
	fields := table.Fields()
	head := make([]string, len(fields))
	for i, f := range fields {
		head[i] = f.Name
	}
	if err := w.Write(head); err != nil {
		return err
	}

	record := make([]string, len(fields))
	err := table.Range(0, table.RecordCount(), func(_ int, row store.Row) error {
		for i, v := range row {
			record[i] = fieldText(v)
		}
		return w.Write(record)
	})
	if err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func exportJSON(out io.Writer, table *store.Table) error {
	enc := json.NewEncoder(out)
	fields := table.Fields()
	return table.Range(0, table.RecordCount(), func(_ int, row store.Row) error {
		obj := make(map[string]any, len(fields))
		for i, f := range fields {
			obj[f.Name] = row[i]
		}
		return enc.Encode(obj)
	})
}

// fieldText renders a decoded value for CSV output.
func fieldText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "T"
		}
		return "F"
	default:
		return fmt.Sprint(x)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
}
