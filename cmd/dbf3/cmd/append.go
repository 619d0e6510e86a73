package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// appendCmd represents the append command
var appendCmd = &cobra.Command{
	Use:   "append <file> <value>...",
	Short: "Append one row and flush the record count",
	Long: `Append one row of ordered field values and flush the header's
record count. Values wider than their field are truncated.

Example:
  dbf3 append people.dbf 1 Alice T`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := openTable(args[0])
		if err != nil {
			return err
		}
		defer table.Close()

		if got, want := len(args)-1, len(table.Fields()); got != want {
			return fmt.Errorf("got %d values for %d fields", got, want)
		}
		values := make([]any, len(args)-1)
		for i, arg := range args[1:] {
			values[i] = arg
		}
		if err := table.Append(values...); err != nil {
			return err
		}
		if err := table.Flush(); err != nil {
			return err
		}
		cmd.Printf("Appended row %d\n", table.RecordCount()-1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
}
