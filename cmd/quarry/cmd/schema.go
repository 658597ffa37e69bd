package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/file"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema <file>",
	Short: "Show the column schema of a quarry file",
	Long:  `Read the file footer and display every leaf column with its physical type, logical type, repetition and level bounds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

type columnInfo struct {
	Path               string `json:"path"`
	Physical           string `json:"physical"`
	Logical            string `json:"logical,omitempty"`
	Repetition         string `json:"repetition"`
	MaxDefinitionLevel int16  `json:"max_definition_level"`
	MaxRepetitionLevel int16  `json:"max_repetition_level"`
	TypeLength         int    `json:"type_length,omitempty"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	r, err := file.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	var cols []columnInfo
	for _, d := range r.Schema().Columns() {
		info := columnInfo{
			Path:               d.Path().String(),
			Physical:           d.PhysicalType().String(),
			Repetition:         d.Node().Repetition().String(),
			MaxDefinitionLevel: d.MaxDefinitionLevel(),
			MaxRepetitionLevel: d.MaxRepetitionLevel(),
		}
		if d.LogicalType() != quarry.None {
			info.Logical = d.LogicalType().String()
		}
		if d.PhysicalType() == quarry.FixedLenByteArray {
			info.TypeLength = d.TypeLength()
		}
		cols = append(cols, info)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(cols, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Path", "Physical", "Logical", "Repetition", "Max Def", "Max Rep")
	for _, c := range cols {
		physical := c.Physical
		if c.TypeLength > 0 {
			physical = fmt.Sprintf("%s(%d)", c.Physical, c.TypeLength)
		}
		table.Append(
			c.Path,
			physical,
			c.Logical,
			c.Repetition,
			strconv.Itoa(int(c.MaxDefinitionLevel)),
			strconv.Itoa(int(c.MaxRepetitionLevel)),
		)
	}
	table.Render()
	return nil
}
