// Package main is the entry point for the tio CLI.
//
// Usage:
//
//	tio [flags] <command> [args]
//
// Commands:
//
//	cat      - Print files, objects or records
//	put      - Write stdin to a file, object or record
//	print    - Format values with a {} layout
//	scan     - Parse typed values from stdin
//	conv     - Convert a text file between encodings
//	stat     - Show sizes of files, objects or records
//	config   - Context management
//	version  - Show version information
package main

import (
	"errors"
	"os"

	"github.com/haivivi/tio/cmd/tio/commands"
	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/stdio"
)

func main() {
	err := commands.Execute()
	err = errors.Join(err, stdio.Shutdown())
	if err != nil {
		cli.PrintError(os.Stderr, "{}", err.Error())
		os.Exit(1)
	}
}
