package stream

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/haivivi/tio/pkg/codec"
	"github.com/haivivi/tio/pkg/device"
)

// Which selects the sides of a stream a seek applies to.
type Which uint8

const (
	In Which = 1 << iota
	Out
	InOut = In | Out
)

// maxEmptyReads bounds consecutive (0, nil) results from a device.
const maxEmptyReads = 100

// Open attaches the stream's device to name. Pending output is flushed to
// the previous resource and pushed back input is dropped. On success the
// state is reset to good.
func Open[D device.Opener](s *Stream[D], name string, mode device.OpenMode) error {
	if s.dev.IsOpen() {
		if err := s.flushSink("open"); err != nil {
			return err
		}
	}
	if s.src != nil {
		s.src.Discard()
	}
	if err := s.dev.Open(name, mode); err != nil {
		return s.raise("open", FailBit, err)
	}
	s.state = GoodBit
	s.log.Debug("stream: open", "name", name)
	return nil
}

// Close flushes pending output and closes the device. A failed stream is
// left untouched; Release tears it down regardless of state. Closing a
// closed device panics.
func Close[D device.Closer](s *Stream[D]) error {
	if !s.dev.IsOpen() {
		panic("stream: close on closed device")
	}
	if s.Fail() {
		return s.refuse("close")
	}
	ferr := s.flushSink("close")
	if s.src != nil {
		s.src.Discard()
	}
	if err := s.dev.Close(); err != nil {
		return s.raise("close", FailBit|BadBit, err)
	}
	return ferr
}

// Read reads exactly len(p) bytes, from pushed back input first. Reaching
// the end of the resource sets EOFBit and, when p could not be filled,
// FailBit. It returns the number of bytes read.
func Read[D device.Reader](s *Stream[D], p []byte) (int, error) {
	return s.read("read", p, 1)
}

// ReadWide reads exactly len(p) UTF-16 code units stored in native byte
// order.
func ReadWide[D device.Reader](s *Stream[D], p []uint16) (int, error) {
	b := make([]byte, len(p)*codec.WideUnit)
	n, err := s.read("read", b, codec.WideUnit)
	units := n / codec.WideUnit
	for i := range units {
		p[i] = binary.NativeEndian.Uint16(b[i*codec.WideUnit:])
	}
	if rem := n % codec.WideUnit; rem > 0 {
		// An incomplete code unit goes back to the input.
		s.src.Push(b[units*codec.WideUnit : n])
	}
	return units, err
}

func (s *Stream[D]) read(op string, p []byte, width int) (int, error) {
	if s.Fail() {
		return 0, s.refuse(op)
	}
	n := 0
	empty := 0
	for n < len(p) {
		w := width
		if n%width != 0 {
			// Complete the element in progress byte by byte.
			w = 1
		}
		m, err := s.src.Read(p[n:], w, s.fill)
		n += m
		switch {
		case err == io.EOF:
			cause := io.ErrUnexpectedEOF
			if n == 0 {
				cause = io.EOF
			}
			return n, s.raise(op, EOFBit|FailBit, cause)
		case err != nil:
			return n, s.raise(op, FailBit|BadBit, err)
		case m == 0:
			if empty++; empty >= maxEmptyReads {
				return n, s.raise(op, FailBit|BadBit, io.ErrNoProgress)
			}
		default:
			empty = 0
		}
	}
	return n, nil
}

// Unread pushes p back so that the next input operations return it again.
// Exceeding the pushback capacity panics.
func Unread[D device.Reader](s *Stream[D], p []byte) {
	s.src.Push(p)
	s.state &^= EOFBit
}

// Write writes p through the output buffer. Device failures and stalls set
// FailBit|BadBit.
func Write[D device.Writer](s *Stream[D], p []byte) (int, error) {
	if s.Fail() {
		return 0, s.refuse("write")
	}
	n, err := s.write(p)
	if err != nil {
		return n, s.raise("write", FailBit|BadBit, err)
	}
	return n, nil
}

// WriteString writes str through the output buffer.
func WriteString[D device.Writer](s *Stream[D], str string) (int, error) {
	return Write(s, []byte(str))
}

// WriteWide writes UTF-16 code units in native byte order and returns the
// number of whole units written.
func WriteWide[D device.Writer](s *Stream[D], p []uint16) (int, error) {
	b := make([]byte, len(p)*codec.WideUnit)
	for i, u := range p {
		binary.NativeEndian.PutUint16(b[i*codec.WideUnit:], u)
	}
	n, err := Write(s, b)
	return n / codec.WideUnit, err
}

// FlushBuffer hands buffered output to the device.
func FlushBuffer[D device.Writer](s *Stream[D]) error {
	if s.Fail() {
		return s.refuse("flush")
	}
	return s.flushSink("flush")
}

// Flush hands buffered output to the device and commits it to stable
// storage.
func Flush[D device.WriteFlusher](s *Stream[D]) error {
	if err := FlushBuffer(s); err != nil || s.Fail() {
		return err
	}
	if err := s.dev.Flush(); err != nil {
		return s.raise("flush", FailBit|BadBit, err)
	}
	return nil
}

// Seek moves the device position. When which includes Out pending output is
// flushed first; when it includes In pushed back input is dropped and a
// relative offset is corrected for it. EOFBit is cleared.
func Seek[D device.Seeker](s *Stream[D], offset int64, whence device.Whence, which Which) (int64, error) {
	if s.Fail() {
		return 0, s.refuse("seek")
	}
	s.state &^= EOFBit
	if which&Out != 0 {
		if err := s.flushSink("seek"); err != nil {
			return 0, err
		}
	}
	if which&In != 0 && s.src != nil {
		if whence == device.SeekCurrent {
			offset -= int64(s.src.Len())
		}
		s.src.Discard()
	}
	pos, err := s.dev.Seek(offset, whence)
	if err != nil {
		bits := FailBit
		if !errors.Is(err, device.ErrSeek) {
			bits |= BadBit
		}
		return 0, s.raise("seek", bits, err)
	}
	s.log.Debug("stream: seek", "offset", offset, "whence", whence, "pos", pos)
	return pos, nil
}

// Tell returns the logical position: the device position less any pushed
// back input.
func Tell[D device.Seeker](s *Stream[D]) (int64, error) {
	if s.Fail() {
		return -1, s.refuse("tell")
	}
	pos, err := s.dev.Seek(0, device.SeekCurrent)
	if err != nil {
		return -1, s.raise("tell", FailBit|BadBit, err)
	}
	pos += int64(s.Buffered())
	pos -= int64(s.Pending())
	return pos, nil
}

// Imbue switches the device's locale and returns the previous one. Pending
// output is flushed under the old locale and pushed back input is dropped.
func Imbue[D device.Localizer](s *Stream[D], loc device.Locale) (device.Locale, error) {
	if s.Fail() {
		return s.dev.Locale(), s.refuse("imbue")
	}
	if err := s.flushSink("imbue"); err != nil {
		return s.dev.Locale(), err
	}
	if s.src != nil {
		s.src.Discard()
	}
	old := s.dev.Imbue(loc)
	s.log.Debug("stream: imbue", "from", old.Name(), "to", loc.Name())
	return old, nil
}
