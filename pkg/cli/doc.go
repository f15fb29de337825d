// Package cli provides the configuration and output helpers of the tio
// command-line tool.
//
// This package includes:
//   - Configuration management (contexts, profiles)
//   - Stream, object store and record store construction from a context
//   - Output formatting (JSON, YAML, table)
//
// Configuration is stored in ~/.tio/config.yaml, supporting multiple
// contexts similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	ctx, err := cfg.ResolveContext("")
//	store, err := ctx.OpenStorage(cfg.Dir())
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
