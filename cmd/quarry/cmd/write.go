package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/file"
	"github.com/quarrydata/quarry/schema"
)

var (
	writeSchemaPath string
	writeInputPath  string
	writeEncodings  []string
	writeGroupSize  int64
	writePageSize   int
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <output>",
	Short: "Write a quarry file from JSON lines",
	Long: `Read one JSON object per line from the input and write a quarry file
with the columns declared in the schema file. Keys missing from a line
become nulls on optional columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeSchemaPath, "schema", "", "schema definition file (YAML, required)")
	writeCmd.Flags().StringVar(&writeInputPath, "input", "", "JSON lines input file (default stdin)")
	writeCmd.Flags().StringArrayVar(&writeEncodings, "encoding", nil, "value encoding per column, e.g. name=RLE_DICTIONARY (repeatable)")
	writeCmd.Flags().Int64Var(&writeGroupSize, "row-group-size", 0, "max rows per row group (default from config)")
	writeCmd.Flags().IntVar(&writePageSize, "page-size", 0, "max values per data page (default from config)")
	_ = writeCmd.MarkFlagRequired("schema")
}

// schemaFile is the YAML shape of a --schema definition.
type schemaFile struct {
	Columns []struct {
		Name       string `yaml:"name"`
		Physical   string `yaml:"physical"`
		Logical    string `yaml:"logical"`
		Repetition string `yaml:"repetition"`
		TypeLength int    `yaml:"type_length"`
	} `yaml:"columns"`
}

func loadSchema(path string) (*schema.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var def schemaFile
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("schema file declares no columns")
	}

	nodes := make([]*schema.Node, 0, len(def.Columns))
	for _, c := range def.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("schema column without a name")
		}
		physical, err := quarry.ParsePhysicalType(strings.ToUpper(c.Physical))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		b := schema.NewPrimitive(c.Name, physical)
		if c.Repetition != "" {
			rep, err := quarry.ParseRepetition(strings.ToUpper(c.Repetition))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			b = b.WithRepetition(rep)
		}
		if c.Logical != "" {
			logical, err := quarry.ParseLogicalType(strings.ToUpper(c.Logical))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			b = b.WithLogicalType(logical)
		}
		if c.TypeLength > 0 {
			b = b.WithTypeLength(c.TypeLength)
		}
		node, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		nodes = append(nodes, node)
	}

	return schema.NewSchema(schema.NewGroup("root", quarry.Required, nodes...))
}

func parseEncodingFlags(flags []string) (map[string]quarry.Encoding, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]quarry.Encoding, len(flags))
	for _, f := range flags {
		name, enc, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --encoding %q, expected column=ENCODING", f)
		}
		parsed, err := quarry.ParseEncoding(strings.ToUpper(enc))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out[name] = parsed
	}
	return out, nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(writeSchemaPath)
	if err != nil {
		return err
	}

	encodings, err := parseEncodingFlags(writeEncodings)
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if writeInputPath != "" {
		f, err := os.Open(writeInputPath)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	groupSize := writeGroupSize
	if groupSize == 0 {
		groupSize = viper.GetInt64("row_group_size")
	}
	pageSize := writePageSize
	if pageSize == 0 {
		pageSize = viper.GetInt("page_size")
	}

	w, err := file.NewWriter(args[0], s, file.WriterProps{
		RowGroupSize: groupSize,
		PageSize:     pageSize,
		Encodings:    encodings,
	})
	if err != nil {
		return err
	}

	cols := s.Columns()
	var rows int64
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			_ = w.Abort()
			return fmt.Errorf("line %d: %w", rows+1, err)
		}

		values := make([]any, len(cols))
		for j, d := range cols {
			values[j] = obj[d.Path().String()]
		}
		if err := w.AppendRow(values...); err != nil {
			_ = w.Abort()
			return fmt.Errorf("line %d: %w", rows+1, err)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		_ = w.Abort()
		return fmt.Errorf("failed to read input: %w", err)
	}

	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", rows, args[0])
	return nil
}
