package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/tio/pkg/format"
	"github.com/haivivi/tio/pkg/stream"
)

var printNoNewline bool

var printCmd = &cobra.Command{
	Use:   "print <layout> [value]...",
	Short: "Format values with a {} layout",
	Long: `Print values formatted by a layout.

Each {} in the layout is replaced by the next value; {{ prints a brace.
Integers accept a base: {x} hex, {o} octal, {b} binary, {d} decimal.
Values that parse as integers, numbers or true/false are printed as such;
anything else is printed as text.

Examples:
  tio print "{} + {} = {}" 1 2 3
  tio print "{} is {x} in hex and {b} in binary" 255 255 255
  tio print -n "{{literal}"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make([]any, len(args)-1)
		for i, a := range args[1:] {
			values[i] = parseValue(a)
		}

		out := stdout()
		return catchUsage(func() error {
			if printNoNewline {
				return stream.Print(out, args[0], values...)
			}
			return stream.Println(out, args[0], values...)
		})
	},
}

// parseValue returns s as an int64, a float64 or a bool when it reads as
// one in full, and as a string otherwise.
func parseValue(s string) any {
	var i int64
	if scanWhole(s, &i) {
		return i
	}
	var f float64
	if scanWhole(s, &f) {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// scanWhole scans s into p and reports whether all of s was consumed.
func scanWhole(s string, p any) bool {
	n, err := format.Sscan(s+"\x00", "{}\x00", p)
	return err == nil && n == 1
}

// catchUsage turns the panics the format package raises for malformed
// layouts into errors.
func catchUsage(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn()
}

func init() {
	printCmd.Flags().BoolVarP(&printNoNewline, "no-newline", "n", false, "do not print the trailing newline")
	rootCmd.AddCommand(printCmd)
}
