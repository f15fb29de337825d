// Package stdio provides the process-wide standard streams.
//
// The streams are created on first use. Out is line buffered, Err is
// unbuffered and In is tied to Out, so pending output is flushed before the
// process waits for input. Call Shutdown before exiting to flush Out.
package stdio

import (
	"errors"
	"sync"

	"github.com/haivivi/tio/pkg/buffer"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/stream"
)

// Stream is the type of the standard streams.
type Stream = stream.Stream[*device.Console]

var (
	out = sync.OnceValue(func() *Stream {
		return mustNew(device.Stdout(), stream.WithMode(buffer.ModeLine))
	})

	errs = sync.OnceValue(func() *Stream {
		return mustNew(device.Stderr(), stream.WithMode(buffer.ModeNone))
	})

	in = sync.OnceValue(func() *Stream {
		return mustNew(device.Stdin(),
			stream.WithMode(buffer.ModeNone),
			stream.WithTie(flushOut),
		)
	})

	shutdownOnce sync.Once
	shutdownErr  error
)

func mustNew(d *device.Console, opts ...stream.Option) *Stream {
	s, err := stream.New(d, opts...)
	if err != nil {
		panic("stdio: " + err.Error())
	}
	return s
}

// In returns the standard input stream.
func In() *Stream { return in() }

// Out returns the standard output stream.
func Out() *Stream { return out() }

// Err returns the standard error stream.
func Err() *Stream { return errs() }

// flushOut flushes Out ahead of reads from In.
func flushOut() error {
	return stream.FlushBuffer(out())
}

// Shutdown flushes the standard streams. Only the first call has an effect;
// later calls return the first result.
func Shutdown() error {
	shutdownOnce.Do(func() {
		shutdownErr = errors.Join(
			stream.FlushBuffer(out()),
			stream.FlushBuffer(errs()),
		)
	})
	return shutdownErr
}
