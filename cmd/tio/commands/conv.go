package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/stream"
)

var (
	convFrom string
	convTo   string
)

var convCmd = &cobra.Command{
	Use:   "conv <input> <output>",
	Short: "Convert a text file between character encodings",
	Long: `Re-encode a text file. The input is decoded from --from and the output
encoded to --to. Encoding names follow the WHATWG encoding labels, e.g.
utf-8, utf-16le, latin1, windows-1252, shift_jis, gbk.

Examples:
  tio conv legacy.txt modern.txt --from latin1
  tio conv notes.txt notes-16.txt --to utf-16le`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := device.LocaleOf(convFrom)
		if err != nil {
			return err
		}
		to, err := device.LocaleOf(convTo)
		if err != nil {
			return err
		}
		ctx, err := getContext()
		if err != nil {
			return err
		}
		opts, err := ctx.StreamOptions(slog.Default())
		if err != nil {
			return err
		}

		n, err := convert(args[0], args[1], from, to, opts)
		if err != nil {
			return err
		}
		slog.Debug("conv: done", "from", from.Name(), "to", to.Name(), "size", cli.FormatBytes(n))
		return nil
	},
}

// convert copies the text of input to output, re-encoding it. It returns
// the number of UTF-8 bytes moved.
func convert(input, output string, from, to device.Locale, opts []stream.Option) (n int64, err error) {
	inFile, err := device.OpenFile(input, device.In|device.Binary)
	if err != nil {
		return 0, err
	}
	defer func() { err = errors.Join(err, inFile.Close()) }()

	outFile, err := device.OpenFile(output, device.Out|device.Truncate|device.Binary)
	if err != nil {
		return 0, err
	}
	defer func() { err = errors.Join(err, outFile.Close()) }()

	src, err := stream.New(device.NewEncoded(inFile, from), opts...)
	if err != nil {
		return 0, err
	}
	defer src.Release()

	err = withStream(device.NewEncoded(outFile, to), opts, func(dst *stream.Stream[*device.Encoded]) error {
		var err error
		if n, err = pipe(src, dst); err != nil {
			return err
		}
		return stream.Flush(dst)
	})
	return n, err
}

func init() {
	convCmd.Flags().StringVar(&convFrom, "from", "utf-8", "encoding of the input")
	convCmd.Flags().StringVar(&convTo, "to", "utf-8", "encoding of the output")
	rootCmd.AddCommand(convCmd)
}
