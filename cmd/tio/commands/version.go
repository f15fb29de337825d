package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/tio/cmd/tio/internal/build"
	"github.com/haivivi/tio/pkg/stream"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("format") {
			return output(build.Get())
		}
		if err := stream.Println(stdout(), "{}", build.String()); err != nil {
			return err
		}
		if verbose {
			if cfg, err := getConfig(); err == nil {
				return stream.Println(stdout(), "  config: {}", cfg.Path())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
