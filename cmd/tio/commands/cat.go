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
	catFrom   string
	catLocale string
)

var catCmd = &cobra.Command{
	Use:   "cat <name>...",
	Short: "Print files, objects or records",
	Long: `Print the contents of files, objects or records to stdout.

Objects come from the context's object store and records from its record
store. With a locale, text is decoded from that encoding to UTF-8.

Examples:
  tio cat notes.txt
  tio cat greeting --from object
  tio cat counter --from record
  tio cat legacy.txt --locale latin1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(catFrom, catLocale)
		if err != nil {
			return err
		}
		defer e.close()

		out := stdout()
		var total int64
		for _, name := range args {
			n, err := catOne(cmd.Context(), e, name, out)
			total += n
			if err != nil {
				return err
			}
		}
		if err := stream.FlushBuffer(out); err != nil {
			return err
		}
		slog.Debug("cat: done", "files", len(args), "size", cli.FormatBytes(total))
		return nil
	},
}

func catOne(ctx context.Context, e *env, name string, out *stdio.Stream) (int64, error) {
	switch catFrom {
	case kindObject:
		dev, err := device.OpenObject(ctx, e.store, name, device.In)
		if err != nil {
			return 0, err
		}
		return catDevice(dev, e.opts, out)
	case kindRecord:
		dev, err := device.OpenRecord(ctx, e.kv, name, device.In)
		if err != nil {
			return 0, err
		}
		return catDevice(dev, e.opts, out)
	}

	f, err := device.OpenFile(name, device.In|device.Binary)
	if err != nil {
		return 0, err
	}
	if !e.hasLoc {
		return catDevice(f, e.opts, out)
	}
	n, err := catDevice(device.NewEncoded(f, e.loc), e.opts, out)
	return n, errClosed(err, f)
}

func catDevice[D device.Reader](dev D, opts []stream.Option, out *stdio.Stream) (int64, error) {
	var n int64
	err := withStream(dev, opts, func(s *stream.Stream[D]) error {
		var err error
		n, err = pipe(s, out)
		return err
	})
	return n, err
}

func init() {
	catCmd.Flags().StringVar(&catFrom, "from", kindFile, "where names live: file, object or record")
	catCmd.Flags().StringVar(&catLocale, "locale", "", "decode text from this encoding (default: the context locale)")
	rootCmd.AddCommand(catCmd)
}
