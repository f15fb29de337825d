// Package device defines the unbuffered byte endpoints that streams read
// from and write to, and provides the concrete devices of the library.
//
// A device advertises what it can do by the interfaces it implements:
// Reader, Writer, Seeker, Closer, Flusher, Opener and Localizer. Streams
// constrain their operations on these interfaces, so calling an operation a
// device does not support fails to compile instead of silently doing
// nothing. CapsOf reports the same information at run time.
//
// End of resource is reported with io.EOF, never as a failure. Failures of
// the backing resource are returned as *Error carrying the OS error code.
// Operating on a closed device is a programming error and panics.
package device

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
)

// Device is the common part of every device.
type Device interface {
	// IsOpen reports whether the device is attached to its resource.
	IsOpen() bool
}

// Reader is a readable device. Read follows io.Reader and returns io.EOF
// once the resource is exhausted.
type Reader interface {
	Device
	Read(p []byte) (int, error)
}

// Writer is a writable device. Write may accept fewer bytes than offered
// without an error; the caller retries with the remainder.
type Writer interface {
	Device
	Write(p []byte) (int, error)
}

// Seeker is a device with a movable position.
type Seeker interface {
	Device
	Seek(offset int64, whence Whence) (int64, error)
}

// Closer is a device that can release its resource.
type Closer interface {
	Device
	Close() error
}

// Flusher is a device that can commit written data to stable storage.
type Flusher interface {
	Device
	Flush() error
}

// Opener is a device that can be (re)attached to a named resource.
type Opener interface {
	Device
	Open(name string, mode OpenMode) error
}

// Localizer is a device whose character encoding can be changed.
type Localizer interface {
	Device
	Imbue(loc Locale) Locale
	Locale() Locale
}

// ReadWriter is a readable and writable device.
type ReadWriter interface {
	Reader
	Writer
}

// WriteFlusher is a writable device that can commit to stable storage.
type WriteFlusher interface {
	Writer
	Flusher
}

// Caps is a capability set.
type Caps uint8

const (
	CapRead Caps = 1 << iota
	CapWrite
	CapSeek
	CapClose
	CapFlush
	CapLocale
	CapOpen
)

var capNames = []string{"read", "write", "seek", "close", "flush", "locale", "open"}

// Has reports whether every capability in want is present.
func (c Caps) Has(want Caps) bool { return c&want == want }

func (c Caps) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for i, name := range capNames {
		if c&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// CapsOf returns the capability set of d.
func CapsOf(d Device) Caps {
	var c Caps
	if _, ok := d.(Reader); ok {
		c |= CapRead
	}
	if _, ok := d.(Writer); ok {
		c |= CapWrite
	}
	if _, ok := d.(Seeker); ok {
		c |= CapSeek
	}
	if _, ok := d.(Closer); ok {
		c |= CapClose
	}
	if _, ok := d.(Flusher); ok {
		c |= CapFlush
	}
	if _, ok := d.(Localizer); ok {
		c |= CapLocale
	}
	if _, ok := d.(Opener); ok {
		c |= CapOpen
	}
	return c
}

// Whence selects the origin of a seek.
type Whence int

const (
	SeekStart   Whence = io.SeekStart
	SeekCurrent Whence = io.SeekCurrent
	SeekEnd     Whence = io.SeekEnd
)

// OpenMode is the set of flags a device is opened with.
type OpenMode uint8

const (
	In OpenMode = 1 << iota
	Out
	Append
	Truncate
	Binary
)

// Has reports whether every flag in want is set.
func (m OpenMode) Has(want OpenMode) bool { return m&want == want }

// ParseOpenMode parses a mode string made of the letters r (In), w (Out and
// Truncate), a (Out and Append), + (In and Out) and b (Binary).
func ParseOpenMode(s string) (OpenMode, error) {
	var m OpenMode
	for _, c := range s {
		switch c {
		case 'r':
			m |= In
		case 'w':
			m |= Out | Truncate
		case 'a':
			m |= Out | Append
		case '+':
			m |= In | Out
		case 'b':
			m |= Binary
		default:
			return 0, fmt.Errorf("device: invalid open mode %q", s)
		}
	}
	if m&(In|Out) == 0 {
		return 0, fmt.Errorf("device: open mode %q neither reads nor writes", s)
	}
	return m, nil
}

var (
	// ErrSeek is returned for seeks to a negative position, past the end of
	// a fixed region, or with an invalid whence.
	ErrSeek = errors.New("device: invalid seek")

	// ErrTooLarge is returned when a container would outgrow an int.
	ErrTooLarge = errors.New("device: too large")
)

// Error is a failure of the resource behind a device.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return "device: " + e.Op + ": " + e.Err.Error()
	}
	return "device: " + e.Op + " " + e.Name + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the OS error number behind the failure, or 0 if there is
// none.
func (e *Error) Code() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

func wrapErr(op, name string, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	return &Error{Op: op, Name: name, Err: err}
}

// mustOpen panics when a device is used while closed.
func mustOpen(open bool, kind, op string) {
	if !open {
		panic("device: " + op + " on closed " + kind)
	}
}

// seekPos resolves a seek against the current position and size.
func seekPos(pos, size, offset int64, whence Whence) (int64, error) {
	var abs int64
	switch whence {
	case SeekStart:
		abs = offset
	case SeekCurrent:
		abs = pos + offset
	case SeekEnd:
		abs = size + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrSeek, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrSeek, abs)
	}
	return abs, nil
}
