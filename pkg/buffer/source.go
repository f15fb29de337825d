package buffer

import "io"

// DefaultPushback is the pushback capacity used when none is requested.
const DefaultPushback = 64

// FillFunc reads from the device behind a Source. It follows io.Reader
// conventions and returns io.EOF at end of resource.
type FillFunc func(p []byte) (int, error)

// Source is the read-side pushback buffer. Pushed bytes are kept on a stack:
// the most recently pushed byte is the first one read back. The zero value is
// ready to use with DefaultPushback capacity.
type Source struct {
	// stack holds pushed bytes; the top of the stack is the last element.
	stack []byte
	limit int
}

// NewSource creates a Source that holds at most limit pushed bytes. A limit of
// zero or less selects DefaultPushback.
func NewSource(limit int) *Source {
	if limit <= 0 {
		limit = DefaultPushback
	}
	return &Source{stack: make([]byte, 0, limit), limit: limit}
}

func (s *Source) capacity() int {
	if s.limit <= 0 {
		return DefaultPushback
	}
	return s.limit
}

// Len returns the number of pushed bytes waiting to be read.
func (s *Source) Len() int { return len(s.stack) }

// Discard drops all pushed bytes.
func (s *Source) Discard() { s.stack = s.stack[:0] }

// Push stores p so that the next reads return it again, in order, ahead of any
// bytes pushed earlier. Exceeding the pushback capacity is a programming
// error.
func (s *Source) Push(p []byte) {
	if len(s.stack)+len(p) > s.capacity() {
		panic("buffer: pushback capacity exceeded")
	}
	for i := len(p) - 1; i >= 0; i-- {
		s.stack = append(s.stack, p[i])
	}
}

// PushByte pushes a single byte.
func (s *Source) PushByte(b byte) {
	if len(s.stack)+1 > s.capacity() {
		panic("buffer: pushback capacity exceeded")
	}
	s.stack = append(s.stack, b)
}

// drain pops pushed bytes into p and returns how many were copied.
func (s *Source) drain(p []byte) int {
	n := 0
	for n < len(p) && len(s.stack) > 0 {
		top := len(s.stack) - 1
		p[n] = s.stack[top]
		s.stack = s.stack[:top]
		n++
	}
	return n
}

// Read fills p from pushback first and then from fill.
//
// width is the element size in bytes of the caller's data (1 for narrow
// characters). When the pushback drained a whole number of elements, the
// device request is rounded down to whole elements; otherwise the remainder
// is requested byte by byte so the partially drained element can complete.
//
// A read satisfied entirely from pushback does not touch the device.
func (s *Source) Read(p []byte, width int, fill FillFunc) (int, error) {
	if width <= 0 {
		width = 1
	}
	n := s.drain(p)
	if n == len(p) {
		return n, nil
	}
	rest := p[n:]
	if n%width == 0 {
		rest = rest[:len(rest)/width*width]
		if len(rest) == 0 {
			return n, nil
		}
	}
	m, err := fill(rest)
	n += m
	if err == io.EOF && n > 0 {
		// Bytes were delivered; report end of resource on the next call.
		err = nil
	}
	return n, err
}

// ReadByte returns the next byte, from pushback if any is queued.
func (s *Source) ReadByte(fill FillFunc) (byte, error) {
	if top := len(s.stack) - 1; top >= 0 {
		b := s.stack[top]
		s.stack = s.stack[:top]
		return b, nil
	}
	var one [1]byte
	for range maxEmptyReads {
		n, err := fill(one[:])
		if n == 1 {
			return one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, io.ErrNoProgress
}

// maxEmptyReads bounds consecutive (0, nil) results from a device.
const maxEmptyReads = 100
