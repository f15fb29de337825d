package commands

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/format"
	"github.com/haivivi/tio/pkg/stream"
)

var (
	scanTypes string
	scanNames string
	scanAll   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <layout>",
	Short: "Parse typed values from stdin with a {} layout",
	Long: `Parse values from stdin and print them as structured output.

Each {} in the layout reads one value of the type at the same position in
--types: int, int8, int16, int32, int64, uint, uint8, uint16, uint32,
uint64, float32, float64, bool or string (a whitespace-delimited word).
Integer placeholders accept a base: {x}, {o}, {b}, {d}. Whitespace in the
layout matches any run of whitespace in the input.

Examples:
  echo "7 2.5 ok" | tio scan "{} {} {}" --types int,float64,string
  echo "ff-10" | tio scan "{x}-{b}" --types uint8,int --names hex,bin
  printf "a 1\nb 2\n" | tio scan "{} {}" --types string,int --all --format table`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types := splitComma(scanTypes)
		names := splitComma(scanNames)
		if len(names) == 0 {
			for i := range types {
				names = append(names, fmt.Sprintf("f%d", i+1))
			}
		}
		if len(names) != len(types) {
			return fmt.Errorf("%d names for %d types", len(names), len(types))
		}

		rows, err := scanRecords(args[0], types)
		if err != nil {
			return err
		}

		if formatOutput == string(cli.FormatTable) {
			table := &cli.Table{Header: names}
			opts := format.DefaultOptions()
			for _, row := range rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = format.Sprint(opts, "{}", v)
				}
				table.Rows = append(table.Rows, cells)
			}
			return output(table)
		}

		records := make([]map[string]any, len(rows))
		for i, row := range rows {
			records[i] = make(map[string]any, len(row))
			for j, v := range row {
				records[i][names[j]] = v
			}
		}
		if !scanAll && len(records) == 1 {
			return output(records[0])
		}
		return output(records)
	},
}

// scanRecords reads one record, or every record with --all, from stdin.
func scanRecords(layout string, types []string) ([][]any, error) {
	in := stdin()
	var rows [][]any
	for {
		dests := make([]any, len(types))
		for i, t := range types {
			d, err := newDest(t)
			if err != nil {
				return nil, err
			}
			dests[i] = d
		}

		var n int
		err := catchUsage(func() error {
			var err error
			n, err = stream.Scan(in, layout, dests...)
			return err
		})
		if n == len(dests) {
			row := make([]any, len(dests))
			for i, d := range dests {
				row[i] = reflect.ValueOf(d).Elem().Interface()
			}
			rows = append(rows, row)
		}
		switch {
		case err != nil && n == 0 && in.EOF() && len(rows) > 0:
			return rows, nil
		case err != nil:
			return nil, fmt.Errorf("scan record %d: %w", len(rows)+1, err)
		case n < len(dests):
			return nil, fmt.Errorf("scan record %d: input ended after %d of %d values", len(rows)+1, n, len(dests))
		}
		if !scanAll || in.EOF() {
			return rows, nil
		}
	}
}

func newDest(t string) (any, error) {
	switch t {
	case "int":
		return new(int), nil
	case "int8":
		return new(int8), nil
	case "int16":
		return new(int16), nil
	case "int32":
		return new(int32), nil
	case "int64":
		return new(int64), nil
	case "uint":
		return new(uint), nil
	case "uint8":
		return new(uint8), nil
	case "uint16":
		return new(uint16), nil
	case "uint32":
		return new(uint32), nil
	case "uint64":
		return new(uint64), nil
	case "float32":
		return new(float32), nil
	case "float", "float64":
		return new(float64), nil
	case "bool":
		return new(bool), nil
	case "string":
		return new(string), nil
	}
	return nil, fmt.Errorf("unknown type %q", t)
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func init() {
	scanCmd.Flags().StringVarP(&scanTypes, "types", "t", "", "comma-separated value types, one per placeholder")
	scanCmd.Flags().StringVar(&scanNames, "names", "", "comma-separated field names (default f1, f2, ...)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "scan records until the end of input")
	scanCmd.MarkFlagRequired("types")
	rootCmd.AddCommand(scanCmd)
}
