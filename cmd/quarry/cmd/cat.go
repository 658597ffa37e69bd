package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/file"
	"github.com/quarrydata/quarry/record"
)

var catLimit int64

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print the rows of a quarry file",
	Long:  `Assemble the columns of a quarry file back into rows and print them one per line.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().Int64Var(&catLimit, "limit", 0, "stop after this many rows (0 means all)")
}

func runCat(cmd *cobra.Command, args []string) error {
	r, err := file.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	rows, err := record.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to read %s as rows: %w", args[0], err)
	}

	ctx := cmd.Context()
	var printed int64
	for catLimit <= 0 || printed < catLimit {
		row, err := rows.Next(ctx)
		if errors.Is(err, quarry.ErrEOF) {
			break
		}
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			obj := make(map[string]any, row.Len())
			for i := 0; i < row.Len(); i++ {
				nf := row.Get(i)
				obj[nf.Name] = nf.Field.GoValue()
			}
			output, err := json.Marshal(obj)
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(output))
		} else {
			fmt.Println(row.String())
		}
		printed++
	}
	return nil
}
