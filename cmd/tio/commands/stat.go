package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
)

var statFrom string

var statCmd = &cobra.Command{
	Use:   "stat <name>...",
	Short: "Show the size of files, objects or records",
	Long: `Describe files, objects or records.

Examples:
  tio stat notes.txt
  tio stat greeting report.csv --from object --format table
  tio stat counter --from record --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(statFrom, "")
		if err != nil {
			return err
		}
		defer e.close()

		table := &cli.Table{Header: []string{"NAME", "KIND", "SIZE", "BYTES", "MODIFIED"}}
		for _, name := range args {
			size, mod, err := statOne(cmd.Context(), e, name)
			if err != nil {
				return err
			}
			table.Rows = append(table.Rows, []string{
				name,
				statFrom,
				cli.FormatBytes(size),
				cli.FormatCount(size),
				cli.FormatAge(mod),
			})
		}
		return output(table)
	},
}

// statOne returns the size of name and, for files, its modification time.
func statOne(ctx context.Context, e *env, name string) (int64, time.Time, error) {
	switch statFrom {
	case kindObject:
		info, err := e.store.Stat(ctx, name)
		if err != nil {
			return 0, time.Time{}, err
		}
		return info.Size, time.Time{}, nil
	case kindRecord:
		data, err := e.kv.Load(ctx, name)
		if err != nil {
			return 0, time.Time{}, err
		}
		return int64(len(data)), time.Time{}, nil
	}
	fi, err := os.Stat(name)
	if err != nil {
		return 0, time.Time{}, err
	}
	return fi.Size(), fi.ModTime(), nil
}

func init() {
	statCmd.Flags().StringVar(&statFrom, "from", kindFile, "where names live: file, object or record")
	rootCmd.AddCommand(statCmd)
}
