package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <file> <index>",
	Short: "Set a row's delete flag",
	Long: `Tombstone a row. Its bytes stay on disk but reads treat it as
absent until it is undeleted.

Example:
  dbf3 delete people.dbf 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeleteFlag(cmd, args, true)
	},
}

// undeleteCmd represents the undelete command
var undeleteCmd = &cobra.Command{
	Use:   "undelete <file> <index>",
	Short: "Clear a row's delete flag",
	Long: `Clear a row's delete flag, making its original field values
visible again.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeleteFlag(cmd, args, false)
	},
}

func setDeleteFlag(cmd *cobra.Command, args []string, deleted bool) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad row index %q: %w", args[1], err)
	}

	table, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer table.Close()

	if err := table.SetDeleted(index, deleted); err != nil {
		return err
	}
	if deleted {
		cmd.Printf("Deleted row %d\n", index)
	} else {
		cmd.Printf("Undeleted row %d\n", index)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(undeleteCmd)
}
