package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts.

A context names an object store, a record store and default stream
settings. Settings are assigned with dotted keys:

  store               local (default) or s3
  root                local object store directory
  s3.bucket           S3 bucket (also s3.prefix, s3.region, s3.endpoint,
                      s3.path_style, s3.access_key, s3.secret_key)
  kv                  badger (default) or memory
  kv_dir              badger directory
  stream.mode         none, line or full
  stream.buffer_size  output buffer size, e.g. 4096 or 64KiB
  stream.pushback     pushback capacity in bytes
  stream.locale       text encoding, e.g. latin1
  stream.bool_alpha   true or false
  extra.<key>         free-form value

Examples:
  tio config add-context dev
  tio config set dev stream.mode line
  tio config use-context dev
  tio config view`,
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		table := &cli.Table{Header: []string{"CURRENT", "NAME", "STORE", "KV"}}
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			table.Rows = append(table.Rows, []string{current, name, orDefault(ctx.Store, "local"), orDefault(ctx.KV, "badger")})
		}
		return output(table)
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Create a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddContext(args[0], &cli.Context{}); err != nil {
			return err
		}
		cli.PrintSuccess(stdioWriter{stdout()}, "Context {} created.", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(stdioWriter{stdout()}, "Context {} deleted.", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(stdioWriter{stdout()}, "Switched to context {}.", args[0])
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Display the current context name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			cli.PrintInfo(stdioWriter{stdout()}, "No current context set.")
			return nil
		}
		return output(cfg.CurrentContext)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <key> <value>",
	Short: "Set a context setting",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		ctx, err := cfg.GetContext(args[0])
		if err != nil {
			return err
		}
		if err := ctx.Set(args[1], args[2]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess(stdioWriter{stdout()}, "Set {} = {} (context: {})", args[1], args[2], args[0])
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view [name]",
	Short: "Show a context with secrets masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := contextName
		if len(args) == 1 {
			name = args[0]
		}
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}
		view := *ctx
		if ctx.S3 != nil {
			s3 := *ctx.S3
			s3.AccessKey = cli.MaskSecret(s3.AccessKey)
			s3.SecretKey = cli.MaskSecret(s3.SecretKey)
			view.S3 = &s3
		}
		return output(&view)
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func init() {
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configViewCmd)

	rootCmd.AddCommand(configCmd)
}
