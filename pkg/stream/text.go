package stream

import (
	"errors"
	"io"

	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/format"
)

// Print writes args formatted by layout. See package format for the
// placeholder syntax.
func Print[D device.Writer](s *Stream[D], layout string, args ...any) error {
	return s.print("print", layout, false, args)
}

// Println is Print followed by a newline.
func Println[D device.Writer](s *Stream[D], layout string, args ...any) error {
	return s.print("println", layout, true, args)
}

func (s *Stream[D]) print(op, layout string, newline bool, args []any) error {
	if s.Fail() {
		return s.refuse(op)
	}
	w := &textWriter[D]{s: s}
	var err error
	if newline {
		err = format.Println(w, s.opts, layout, args...)
	} else {
		err = format.Print(w, s.opts, layout, args...)
	}
	switch {
	case w.err != nil:
		return s.raise(op, FailBit|BadBit, w.err)
	case err != nil:
		return s.raise(op, FailBit, err)
	}
	return nil
}

// textWriter feeds formatted output into the stream's buffer and records
// device failures apart from formatting failures.
type textWriter[D device.Device] struct {
	s   *Stream[D]
	err error
}

func (w *textWriter[D]) Write(p []byte) (int, error) {
	n, err := w.s.write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

// Scan parses input into args as directed by layout and returns the
// number of arguments assigned. Malformed input sets FailBit; reaching the
// end of the resource sets EOFBit, and FailBit too when an argument could
// not be read at all.
func Scan[D device.Reader](s *Stream[D], layout string, args ...any) (int, error) {
	if s.Fail() {
		return 0, s.refuse("scan")
	}
	st := &scanState[D]{s: s}
	n, err := format.Scan(st, layout, args...)

	var bits IOState
	if st.eof {
		bits |= EOFBit
	}
	var perr *format.ParseError
	switch {
	case err == nil:
	case err == io.EOF:
		bits |= EOFBit | FailBit
	case errors.As(err, &perr):
		bits |= FailBit
	default:
		bits |= FailBit | BadBit
	}
	if bits == GoodBit {
		return n, nil
	}
	return n, s.raise("scan", bits, err)
}

// scanState is the format.State of a stream: bytes come from pushback and
// then the device.
type scanState[D device.Device] struct {
	s   *Stream[D]
	eof bool
}

func (st *scanState[D]) ReadByte() (byte, error) {
	b, err := st.s.src.ReadByte(st.s.fill)
	if err == io.EOF {
		st.eof = true
	}
	return b, err
}

func (st *scanState[D]) Unread(p ...byte) {
	st.s.src.Push(p)
}
