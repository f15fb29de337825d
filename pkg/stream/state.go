package stream

import (
	"errors"
	"strings"
)

// IOState is the condition of a stream. The zero value, GoodBit, means no
// error bit is set.
type IOState uint8

const (
	// GoodBit is the absence of any error bit.
	GoodBit IOState = 0

	// EOFBit is set when an input operation reached the end of the resource.
	EOFBit IOState = 1 << (iota - 1)

	// FailBit is set when an operation did not produce the requested result:
	// malformed input, an incomplete read, or an operation attempted on a
	// failed stream.
	FailBit

	// BadBit is set when the device failed. The stream is unusable until the
	// state is cleared.
	BadBit
)

// DefaultExceptions is the exception mask of a new stream.
const DefaultExceptions = FailBit | BadBit

func (s IOState) String() string {
	if s == GoodBit {
		return "good"
	}
	var names []string
	if s&EOFBit != 0 {
		names = append(names, "eof")
	}
	if s&FailBit != 0 {
		names = append(names, "fail")
	}
	if s&BadBit != 0 {
		names = append(names, "bad")
	}
	return strings.Join(names, "|")
}

var (
	// ErrUnsupported is returned by New when a buffered mode is requested for
	// a device that cannot be written.
	ErrUnsupported = errors.New("stream: buffering requires a writable device")

	// ErrFailed is the cause reported for operations attempted on a stream
	// whose fail bit is set.
	ErrFailed = errors.New("stream: stream has failed")
)

// Error reports the state bits an operation set, when they intersect the
// exception mask.
type Error struct {
	Op    string
	State IOState
	Err   error
}

func (e *Error) Error() string {
	msg := "stream: " + e.Op + ": " + e.State.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// State returns the current state bits.
func (s *Stream[D]) State() IOState { return s.state }

// Good reports whether no error bit is set.
func (s *Stream[D]) Good() bool { return s.state == GoodBit }

// EOF reports whether the end of the resource was reached.
func (s *Stream[D]) EOF() bool { return s.state&EOFBit != 0 }

// Fail reports whether the fail or bad bit is set.
func (s *Stream[D]) Fail() bool { return s.state&(FailBit|BadBit) != 0 }

// Bad reports whether the bad bit is set.
func (s *Stream[D]) Bad() bool { return s.state&BadBit != 0 }

// SetState adds bits to the state. It returns an *Error if the added bits
// intersect the exception mask.
func (s *Stream[D]) SetState(bits IOState) error {
	return s.raise("setstate", bits, nil)
}

// Clear replaces the state with bits, GoodBit to reset the stream. It
// returns an *Error if the new state intersects the exception mask.
func (s *Stream[D]) Clear(bits IOState) error {
	s.state = bits
	if bits&s.except != 0 {
		return &Error{Op: "clear", State: bits}
	}
	return nil
}

// ClearEOF clears only the EOF bit, for example to keep reading a file
// another process appends to.
func (s *Stream[D]) ClearEOF() { s.state &^= EOFBit }

// Exceptions returns the exception mask.
func (s *Stream[D]) Exceptions() IOState { return s.except }

// SetExceptions replaces the exception mask. It returns an *Error if the
// current state already intersects the new mask.
func (s *Stream[D]) SetExceptions(mask IOState) error {
	s.except = mask
	if s.state&mask != 0 {
		return &Error{Op: "exceptions", State: s.state & mask}
	}
	return nil
}

// raise sets bits and returns an *Error carrying cause if they intersect
// the exception mask.
func (s *Stream[D]) raise(op string, bits IOState, cause error) error {
	if bits&BadBit != 0 && s.state&BadBit == 0 {
		s.log.Debug("stream: bad", "op", op, "err", cause)
	}
	s.state |= bits
	if bits&s.except != 0 {
		return &Error{Op: op, State: bits, Err: cause}
	}
	return nil
}

// refuse fails an operation attempted on a failed stream.
func (s *Stream[D]) refuse(op string) error {
	return s.raise(op, FailBit, ErrFailed)
}
