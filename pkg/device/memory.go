package device

import (
	"io"
	"math"
)

// Span is a device over a fixed memory region. Reads and writes share one
// bounds-checked cursor. Reads stop at the end of the region with io.EOF;
// writes past the end are short, which a stream sees as a stalled device.
type Span struct {
	buf  []byte
	pos  int
	high int
}

var (
	_ ReadWriter = (*Span)(nil)
	_ Seeker     = (*Span)(nil)
)

// NewSpan returns a Span over buf. The whole of buf is readable.
func NewSpan(buf []byte) *Span {
	return &Span{buf: buf}
}

// IsOpen always reports true; a span has no resource to detach.
func (d *Span) IsOpen() bool { return true }

// Read reads from the cursor up to the end of the span.
func (d *Span) Read(p []byte) (int, error) {
	if d.pos >= len(d.buf) {
		return 0, io.EOF
	}
	n := copy(p, d.buf[d.pos:])
	d.pos += n
	return n, nil
}

// Write copies p at the cursor, truncated to the room left in the span.
func (d *Span) Write(p []byte) (int, error) {
	if d.pos >= len(d.buf) {
		return 0, nil
	}
	n := copy(d.buf[d.pos:], p)
	d.pos += n
	d.high = max(d.high, d.pos)
	return n, nil
}

// Seek moves the cursor within the span.
func (d *Span) Seek(offset int64, whence Whence) (int64, error) {
	abs, err := seekPos(int64(d.pos), int64(len(d.buf)), offset, whence)
	if err != nil {
		return 0, err
	}
	if abs > int64(len(d.buf)) {
		return 0, ErrSeek
	}
	d.pos = int(abs)
	return abs, nil
}

// Bytes returns the prefix of the span up to the furthest byte written.
func (d *Span) Bytes() []byte { return d.buf[:d.high] }

// Len returns the size of the span.
func (d *Span) Len() int { return len(d.buf) }

// Container is a device over a growable byte slice. Writes overwrite at the
// cursor and extend the slice; in Append mode every write goes to the end.
// Seeking past the end resizes the container, zero filling the gap.
type Container struct {
	data   []byte
	pos    int
	append bool
}

var (
	_ ReadWriter = (*Container)(nil)
	_ Seeker     = (*Container)(nil)
)

// NewContainer returns a container holding data. Truncate mode discards the
// initial contents; Append mode positions every write at the end.
func NewContainer(data []byte, mode OpenMode) *Container {
	c := &Container{data: data, append: mode.Has(Append)}
	if mode.Has(Truncate) {
		c.data = c.data[:0]
	}
	return c
}

// IsOpen always reports true.
func (d *Container) IsOpen() bool { return true }

// Read reads from the cursor.
func (d *Container) Read(p []byte) (int, error) {
	if d.pos >= len(d.data) {
		return 0, io.EOF
	}
	n := copy(p, d.data[d.pos:])
	d.pos += n
	return n, nil
}

// Write stores p at the cursor, growing the container as needed.
func (d *Container) Write(p []byte) (int, error) {
	if d.append {
		d.pos = len(d.data)
	}
	if len(p) > math.MaxInt-d.pos {
		return 0, &Error{Op: "write", Name: "container", Err: ErrTooLarge}
	}
	end := d.pos + len(p)
	if end > len(d.data) {
		d.data = append(d.data, make([]byte, end-len(d.data))...)
	}
	copy(d.data[d.pos:], p)
	d.pos = end
	return len(p), nil
}

// Seek moves the cursor. A position beyond the end resizes the container.
func (d *Container) Seek(offset int64, whence Whence) (int64, error) {
	abs, err := seekPos(int64(d.pos), int64(len(d.data)), offset, whence)
	if err != nil {
		return 0, err
	}
	if abs > int64(math.MaxInt) {
		return 0, &Error{Op: "seek", Name: "container", Err: ErrTooLarge}
	}
	if int(abs) > len(d.data) {
		d.data = append(d.data, make([]byte, int(abs)-len(d.data))...)
	}
	d.pos = int(abs)
	return abs, nil
}

// Truncate erases everything from n on. The cursor is clamped to the new
// length.
func (d *Container) Truncate(n int) {
	if n < 0 || n > len(d.data) {
		panic("device: container truncate out of range")
	}
	d.data = d.data[:n]
	d.pos = min(d.pos, n)
}

// Bytes returns the container contents.
func (d *Container) Bytes() []byte { return d.data }

// Len returns the container size.
func (d *Container) Len() int { return len(d.data) }

// Null discards writes and is always at end of resource for reads.
type Null struct{}

var _ ReadWriter = Null{}

// IsOpen always reports true.
func (Null) IsOpen() bool { return true }

// Read always returns io.EOF.
func (Null) Read([]byte) (int, error) { return 0, io.EOF }

// Write accepts and discards p.
func (Null) Write(p []byte) (int, error) { return len(p), nil }
