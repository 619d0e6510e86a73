package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halvard/dbf3/pkg/codec"
	"github.com/halvard/dbf3/pkg/store"
)

var createFields []string

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a new table file",
	Long: `Create a new dBASE III table file with the given fields.

Fields are given as name,type,length[,decimals] with type one of
C (character), N (numeric), D (date), L (logical).

Example:
  dbf3 create people.dbf --field id,N,8 --field name,C,20 --field active,L,1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(createFields) == 0 {
			return fmt.Errorf("at least one --field is required")
		}
		fields := make([]codec.FieldDescriptor, 0, len(createFields))
		for _, spec := range createFields {
			fd, err := parseFieldSpec(spec)
			if err != nil {
				return err
			}
			fields = append(fields, fd)
		}

		opts, err := openOptions()
		if err != nil {
			return err
		}
		table, err := store.Create(args[0], fields, opts)
		if err != nil {
			return err
		}
		defer table.Close()

		cmd.Printf("Created %s: %d fields, %d bytes per record\n",
			args[0], len(fields), table.RecordSize())
		return nil
	},
}

// parseFieldSpec parses one name,type,length[,decimals] field spec.
func parseFieldSpec(spec string) (codec.FieldDescriptor, error) {
	parts := strings.Split(spec, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return codec.FieldDescriptor{}, fmt.Errorf("field %q: want name,type,length[,decimals]", spec)
	}
	typ := strings.ToUpper(strings.TrimSpace(parts[1]))
	if len(typ) != 1 {
		return codec.FieldDescriptor{}, fmt.Errorf("field %q: type must be a single letter", spec)
	}
	length, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return codec.FieldDescriptor{}, fmt.Errorf("field %q: bad length: %w", spec, err)
	}
	decimals := 0
	if len(parts) == 4 {
		decimals, err = strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return codec.FieldDescriptor{}, fmt.Errorf("field %q: bad decimals: %w", spec, err)
		}
	}
	return codec.FieldDescriptor{
		Name:     strings.TrimSpace(parts[0]),
		Type:     codec.FieldType(typ[0]),
		Length:   length,
		Decimals: decimals,
	}, nil
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringArrayVar(&createFields, "field", nil, "Field spec name,type,length[,decimals] (repeatable)")
}
