// Package stream provides typed, buffered streams over devices.
//
// A Stream owns one device and, depending on what the device can do, a
// sink buffer for output and a pushback source for input. Operations are
// package functions constrained on the device capabilities they need, so
//
//	stream.Seek(s, 0, device.SeekStart, stream.InOut)
//
// only compiles when the stream's device is a device.Seeker.
//
// A stream tracks its condition in an IOState. An operation on a stream
// whose fail bit is set fails without touching the device. Operations
// report errors only when the state bits they set intersect the exception
// mask, FailBit|BadBit by default; with an empty mask callers inspect the
// state instead.
package stream

import (
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/haivivi/tio/pkg/buffer"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/format"
)

// Stream is a buffered stream over a device of type D.
type Stream[D device.Device] struct {
	dev    D
	w      device.Writer
	r      device.Reader
	sink   *buffer.Sink
	src    *buffer.Source
	state  IOState
	except IOState
	opts   format.Options
	tie    func() error
	id     uuid.UUID
	log    *slog.Logger
}

// Option configures a Stream.
type Option func(*options)

type options struct {
	mode      buffer.Mode
	modeSet   bool
	size      int
	external  []byte
	except    IOState
	boolAlpha bool
	pushback  int
	tie       func() error
	logger    *slog.Logger
	text      format.TextFormatter
}

// WithMode selects the flush policy of the output buffer. The default is
// buffer.ModeFull for writable devices.
func WithMode(mode buffer.Mode) Option {
	return func(o *options) {
		o.mode = mode
		o.modeSet = true
	}
}

// WithBufferSize sets the size of an internally allocated output buffer.
func WithBufferSize(size int) Option {
	return func(o *options) { o.size = size }
}

// WithExternalBuffer makes the stream buffer output into storage, which the
// caller keeps owning. It implies buffer.ModeExternal.
func WithExternalBuffer(storage []byte) Option {
	return func(o *options) {
		o.external = storage
		o.mode = buffer.ModeExternal
		o.modeSet = true
	}
}

// WithExceptions sets the initial exception mask.
func WithExceptions(mask IOState) Option {
	return func(o *options) { o.except = mask }
}

// WithBoolAlpha selects whether booleans print as true/false (the default)
// or as 1/0.
func WithBoolAlpha(on bool) Option {
	return func(o *options) { o.boolAlpha = on }
}

// WithPushback sets the pushback capacity of the input side.
func WithPushback(n int) Option {
	return func(o *options) { o.pushback = n }
}

// WithTie makes the stream call flush before every read from its device.
// Standard input is tied to standard output this way so that prompts appear
// before input is awaited.
func WithTie(flush func() error) Option {
	return func(o *options) { o.tie = flush }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTextFormatter sets the formatter used to print values of types the
// stream has no built-in support for.
func WithTextFormatter(f format.TextFormatter) Option {
	return func(o *options) { o.text = f }
}

// New creates a stream that owns dev.
//
// Writable devices get an output buffer; readable devices get a pushback
// source. Requesting a buffered mode for a device that cannot be written
// returns ErrUnsupported.
func New[D device.Device](dev D, opts ...Option) (*Stream[D], error) {
	o := options{
		except:    DefaultExceptions,
		boolAlpha: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Stream[D]{
		dev:    dev,
		except: o.except,
		opts:   format.Options{BoolAlpha: o.boolAlpha, Text: o.text},
		tie:    o.tie,
		id:     uuid.New(),
	}

	w, writable := any(dev).(device.Writer)
	switch {
	case writable:
		s.w = w
		mode := buffer.ModeFull
		if o.modeSet {
			mode = o.mode
		}
		if mode == buffer.ModeExternal {
			if len(o.external) == 0 {
				return nil, errors.New("stream: external buffer mode requires storage")
			}
			s.sink = buffer.NewExternalSink(o.external)
		} else {
			s.sink = buffer.NewSink(mode, o.size)
		}
	case o.modeSet && o.mode != buffer.ModeNone:
		return nil, ErrUnsupported
	}
	if r, ok := any(dev).(device.Reader); ok {
		s.r = r
		s.src = buffer.NewSource(o.pushback)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	s.log = logger.With("stream", s.id.String())
	s.log.Debug("stream: new", "caps", device.CapsOf(dev), "mode", s.Mode())
	return s, nil
}

// Device returns the owned device.
func (s *Stream[D]) Device() D { return s.dev }

// ID returns the identifier the stream logs with.
func (s *Stream[D]) ID() uuid.UUID { return s.id }

// IsOpen reports whether the device is open.
func (s *Stream[D]) IsOpen() bool { return s.dev.IsOpen() }

// Mode returns the flush policy of the output buffer. Streams without
// output report buffer.ModeNone.
func (s *Stream[D]) Mode() buffer.Mode {
	if s.sink == nil {
		return buffer.ModeNone
	}
	return s.sink.Mode()
}

// Buffered returns the number of output bytes not yet handed to the device.
func (s *Stream[D]) Buffered() int {
	if s.sink == nil {
		return 0
	}
	return s.sink.Buffered()
}

// Pending returns the number of pushed back input bytes.
func (s *Stream[D]) Pending() int {
	if s.src == nil {
		return 0
	}
	return s.src.Len()
}

// Release flushes pending output and closes the device if it can be
// closed. It is meant to be deferred right after New and is safe to call on
// a stream whose device is already closed.
func (s *Stream[D]) Release() error {
	var errs []error
	if s.sink != nil && s.sink.Buffered() > 0 && s.dev.IsOpen() {
		if err := s.sink.Flush(s.w.Write); err != nil {
			s.state |= FailBit | BadBit
			errs = append(errs, err)
		}
	}
	if c, ok := any(s.dev).(device.Closer); ok && c.IsOpen() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.src != nil {
		s.src.Discard()
	}
	err := errors.Join(errs...)
	s.log.Debug("stream: release", "state", s.state, "err", err)
	return err
}

// flushSink drains the output buffer to the device.
func (s *Stream[D]) flushSink(op string) error {
	if s.sink == nil || s.sink.Buffered() == 0 {
		return nil
	}
	n := s.sink.Buffered()
	if err := s.sink.Flush(s.w.Write); err != nil {
		return s.raise(op, FailBit|BadBit, err)
	}
	s.log.Debug("stream: flush", "op", op, "bytes", n)
	return nil
}

// write passes p through the output buffer until all of it is accepted.
// The error is the device's, or io.ErrShortWrite if the device stalled.
func (s *Stream[D]) write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := s.sink.Write(p[total:], s.w.Write)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// fill reads from the device for the input side, flushing the tied stream
// first.
func (s *Stream[D]) fill(p []byte) (int, error) {
	if s.tie != nil {
		if err := s.tie(); err != nil {
			s.log.Debug("stream: tied flush", "err", err)
		}
	}
	return s.r.Read(p)
}
