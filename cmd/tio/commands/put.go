package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/stdio"
	"github.com/haivivi/tio/pkg/stream"
)

var (
	putTo     string
	putLocale string
	putAppend bool
)

var putCmd = &cobra.Command{
	Use:   "put <name>",
	Short: "Write stdin to a file, object or record",
	Long: `Copy stdin into a file, an object or a record, replacing its contents.

With a locale, UTF-8 input is encoded to that encoding on the way out.

Examples:
  echo hello | tio put greeting --to object
  echo 41 | tio put counter --to record
  tio put log.txt --append < more.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(putTo, putLocale)
		if err != nil {
			return err
		}
		defer e.close()

		n, err := putOne(cmd.Context(), e, args[0], stdin())
		if err != nil {
			return err
		}
		slog.Debug("put: done", "name", args[0], "size", cli.FormatBytes(n))
		if verbose {
			cli.PrintSuccess(stdioWriter{stderr()}, "wrote {} to {}", cli.FormatBytes(n), args[0])
		}
		return nil
	},
}

func putOne(ctx context.Context, e *env, name string, in *stdio.Stream) (int64, error) {
	switch putTo {
	case kindObject:
		if putAppend {
			return 0, errAppendUnsupported
		}
		dev, err := device.OpenObject(ctx, e.store, name, device.Out)
		if err != nil {
			return 0, err
		}
		return putDevice(in, dev, e.opts)
	case kindRecord:
		mode := device.Out | device.Truncate
		if putAppend {
			mode = device.Out | device.Append
		}
		dev, err := device.OpenRecord(ctx, e.kv, name, mode)
		if err != nil {
			return 0, err
		}
		return putFlushed(in, dev, e.opts)
	}

	mode := device.Out | device.Truncate | device.Binary
	if putAppend {
		mode = device.Out | device.Append | device.Binary
	}
	f, err := device.OpenFile(name, mode)
	if err != nil {
		return 0, err
	}
	if !e.hasLoc {
		return putFlushed(in, f, e.opts)
	}
	n, err := putFlushed(in, device.NewEncoded(f, e.loc), e.opts)
	return n, errClosed(err, f)
}

// putDevice copies in to dev; the data is committed when the stream is
// released.
func putDevice[D device.Writer](in *stdio.Stream, dev D, opts []stream.Option) (int64, error) {
	var n int64
	err := withStream(dev, opts, func(s *stream.Stream[D]) error {
		var err error
		n, err = pipe(in, s)
		return err
	})
	return n, err
}

// putFlushed copies in to dev and flushes the device before release.
func putFlushed[D device.WriteFlusher](in *stdio.Stream, dev D, opts []stream.Option) (int64, error) {
	var n int64
	err := withStream(dev, opts, func(s *stream.Stream[D]) error {
		var err error
		if n, err = pipe(in, s); err != nil {
			return err
		}
		return stream.Flush(s)
	})
	return n, err
}

func init() {
	putCmd.Flags().StringVar(&putTo, "to", kindFile, "where the name lives: file, object or record")
	putCmd.Flags().StringVar(&putLocale, "locale", "", "encode text to this encoding (default: the context locale)")
	putCmd.Flags().BoolVar(&putAppend, "append", false, "append instead of replacing (files and records)")
	rootCmd.AddCommand(putCmd)
}
