package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quarrydata/quarry/file"
)

// metaCmd represents the meta command
var metaCmd = &cobra.Command{
	Use:   "meta <file>",
	Short: "Show row group and column chunk metadata",
	Long:  `Read the file footer and display the row groups with the offset, size, value count and encoding of every column chunk.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMeta,
}

func init() {
	rootCmd.AddCommand(metaCmd)
}

type fileInfo struct {
	Path      string      `json:"path"`
	CreatedBy string      `json:"created_by,omitempty"`
	NumRows   int64       `json:"num_rows"`
	RowGroups []groupInfo `json:"row_groups"`
}

type groupInfo struct {
	NumRows int64            `json:"num_rows"`
	Chunks  []file.ChunkInfo `json:"chunks"`
}

func runMeta(cmd *cobra.Command, args []string) error {
	r, err := file.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	info := fileInfo{
		Path:      args[0],
		CreatedBy: r.CreatedBy(),
		NumRows:   r.NumRows(),
	}
	for i := 0; i < r.NumRowGroups(); i++ {
		g, err := r.RowGroup(i)
		if err != nil {
			return err
		}
		info.RowGroups = append(info.RowGroups, groupInfo{
			NumRows: g.NumRows(),
			Chunks:  g.Chunks(),
		})
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("File:       %s\n", info.Path)
	fmt.Printf("Created by: %s\n", info.CreatedBy)
	fmt.Printf("Rows:       %d\n", info.NumRows)
	fmt.Printf("Row groups: %d\n\n", len(info.RowGroups))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Group", "Column", "Encoding", "Values", "Pages", "Offset", "Bytes")
	for i, g := range info.RowGroups {
		for _, c := range g.Chunks {
			table.Append(
				strconv.Itoa(i),
				c.Path,
				c.Encoding,
				strconv.FormatInt(c.NumValues, 10),
				strconv.Itoa(c.NumPages),
				strconv.FormatInt(c.Offset, 10),
				strconv.FormatInt(c.Size, 10),
			)
		}
	}
	table.Render()
	return nil
}
