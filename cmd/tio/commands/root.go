package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/stdio"
	"github.com/haivivi/tio/pkg/stream"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	formatOutput string
	verbose      bool

	// Global configuration
	globalConfig *cli.Config

	// configLoadErr stores the error from loading the config for deferred
	// reporting by commands that need it.
	configLoadErr error
)

// Standard streams used by the commands. Tests replace them with streams
// over pipes.
var (
	stdin  = stdio.In
	stdout = stdio.Out
	stderr = stdio.Err
)

var rootCmd = &cobra.Command{
	Use:   "tio",
	Short: "Typed, buffered I/O over files, objects and records",
	Long: `tio - read, write, format and parse data through buffered streams.

Data can live in local files, in an object store (a local directory or
S3) or in a record store (badger or memory). The store and the default
stream settings come from a context in ~/.tio/config.yaml.

Examples:
  # Configure a context backed by S3
  tio config add-context prod
  tio config set prod store s3
  tio config set prod s3.bucket my-bucket
  tio config use-context prod

  # Copy stdin into an object and print it back
  echo hello | tio put greeting --to object
  tio cat greeting --from object

  # Format and parse values
  tio print "{} is {x} in hex" 255 255
  echo "7 2.5 ok" | tio scan "{} {} {}" --types int,float,string`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tio/config.yaml, or $TIO_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "yaml", "output format for structured results (yaml, json, table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	path := cfgFile
	if path == "" {
		path = os.Getenv("TIO_CONFIG")
	}
	globalConfig, configLoadErr = cli.LoadConfigWithPath(path)
}

// getConfig returns the global configuration.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// getContext returns the context selected by --context, the current
// context, or the defaults.
func getContext() (*cli.Context, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ResolveContext(contextName)
}

// output writes a structured result to stdout in the --format format.
func output(result any) error {
	f, err := cli.ParseOutputFormat(formatOutput)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: f,
		Writer: stdioWriter{stdout()},
	})
}

// stdioWriter adapts a standard stream to io.Writer.
type stdioWriter struct{ s *stdio.Stream }

func (w stdioWriter) Write(p []byte) (int, error) {
	return stream.Write(w.s, p)
}
