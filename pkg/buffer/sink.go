package buffer

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultSize is the sink window size used when none is requested.
const DefaultSize = 4096

// Mode is the flush policy of a Sink.
type Mode uint8

const (
	// ModeNone passes every write straight to the flush function. No storage
	// is allocated.
	ModeNone Mode = iota

	// ModeExternal buffers into caller-owned storage and flushes only when the
	// window saturates or on an explicit Flush.
	ModeExternal

	// ModeLine flushes through the newest line terminator after every write,
	// leaving any unterminated suffix buffered.
	ModeLine

	// ModeFull flushes only when the window saturates or on an explicit Flush.
	ModeFull
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeExternal:
		return "external"
	case ModeLine:
		return "line"
	case ModeFull:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "none", "":
		return ModeNone, nil
	case "external":
		return ModeExternal, nil
	case "line":
		return ModeLine, nil
	case "full":
		return ModeFull, nil
	}
	return 0, fmt.Errorf("buffer: unknown mode %q", s)
}

// FlushFunc hands committed bytes to a device. It returns how many bytes of p
// were consumed; a short count with a nil error means the device stalled.
type FlushFunc func(p []byte) (int, error)

// Sink is the write-side buffer. The committed window is buf[:n]; the free
// space is buf[n:]. Bytes that a flush leaves behind are always moved back to
// the front of buf, so the window begins at offset zero.
type Sink struct {
	mode Mode
	buf  []byte
	n    int
}

// NewSink creates a Sink with its own storage of the given size. A size of
// zero or less selects DefaultSize. For ModeNone no storage is allocated.
func NewSink(mode Mode, size int) *Sink {
	if mode == ModeNone {
		return &Sink{mode: ModeNone}
	}
	if mode == ModeExternal {
		panic("buffer: ModeExternal requires caller storage, use NewExternalSink")
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Sink{mode: mode, buf: make([]byte, size)}
}

// NewExternalSink creates a Sink that buffers into storage, which the caller
// keeps owning. The whole length of storage is used as the window.
func NewExternalSink(storage []byte) *Sink {
	if len(storage) == 0 {
		panic("buffer: empty external storage")
	}
	return &Sink{mode: ModeExternal, buf: storage}
}

// Mode returns the flush policy.
func (s *Sink) Mode() Mode { return s.mode }

// Size returns the capacity of the window.
func (s *Sink) Size() int { return len(s.buf) }

// Buffered returns the number of written but unflushed bytes.
func (s *Sink) Buffered() int { return s.n }

// Available returns the free space left in the window.
func (s *Sink) Available() int { return len(s.buf) - s.n }

// Bytes returns the unflushed bytes. The slice aliases the window and is only
// valid until the next Write, Flush or Reset.
func (s *Sink) Bytes() []byte { return s.buf[:s.n] }

// Reset drops any unflushed bytes.
func (s *Sink) Reset() { s.n = 0 }

// Write buffers p, flushing through flush as the mode requires.
//
// The return value is the number of bytes of p accepted into the window or
// passed to the device. It is less than len(p) only when flush reports an
// error or stalls with the window still full; the caller retries with the
// remainder, as with a short write on a file descriptor.
func (s *Sink) Write(p []byte, flush FlushFunc) (int, error) {
	if s.mode == ModeNone {
		return flush(p)
	}

	written := 0
	for len(p) > 0 {
		// Large writes into an empty window skip the copy.
		if s.n == 0 && len(p) >= len(s.buf) {
			n, err := flush(p)
			written += n
			if err != nil || n == 0 {
				return written, err
			}
			p = p[n:]
			continue
		}

		n := copy(s.buf[s.n:], p)
		s.n += n
		written += n
		p = p[n:]

		if s.n == len(s.buf) {
			if _, err := s.flushWindow(s.n, flush); err != nil {
				return written, err
			}
			if s.n == len(s.buf) {
				// Device accepted nothing.
				return written, nil
			}
		}
	}

	if s.mode == ModeLine {
		if i := bytes.LastIndexByte(s.buf[:s.n], '\n'); i >= 0 {
			if _, err := s.flushWindow(i+1, flush); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush hands every buffered byte to flush, retrying partial flushes until
// the window is empty. It returns io.ErrShortWrite if the device stalls.
func (s *Sink) Flush(flush FlushFunc) error {
	for s.n > 0 {
		n, err := s.flushWindow(s.n, flush)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// flushWindow offers buf[:k] to flush and shifts whatever was not consumed,
// including buf[k:n], to the front of storage.
func (s *Sink) flushWindow(k int, flush FlushFunc) (int, error) {
	n, err := flush(s.buf[:k])
	if n < 0 || n > k {
		panic("buffer: flush returned invalid count")
	}
	if n > 0 {
		copy(s.buf, s.buf[n:s.n])
		s.n -= n
	}
	if err != nil {
		return n, fmt.Errorf("buffer: flush: %w", err)
	}
	return n, nil
}
