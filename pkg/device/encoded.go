package device

import (
	"fmt"

	"golang.org/x/text/transform"

	"github.com/haivivi/tio/pkg/codec"
)

// Locale selects the character encoding of a localizable device. The zero
// Locale is the C locale: bytes pass through unchanged.
//
// Locales only affect character encoding. Number formatting never depends
// on the locale.
type Locale struct {
	c codec.Codec
}

// LocaleOf returns the locale for a codec name understood by codec.Lookup.
func LocaleOf(name string) (Locale, error) {
	c, err := codec.Lookup(name)
	if err != nil {
		return Locale{}, fmt.Errorf("device: locale: %w", err)
	}
	return Locale{c: c}, nil
}

// LocaleFor returns the locale for c.
func LocaleFor(c codec.Codec) Locale { return Locale{c: c} }

// Codec returns the locale's codec.
func (l Locale) Codec() codec.Codec {
	if l.c == nil {
		return codec.UTF8
	}
	return l.c
}

// Name returns the codec name.
func (l Locale) Name() string { return l.Codec().Name() }

// Encoded is a localizable device that transcodes between UTF-8 on the
// stream side and the locale's encoding on the inner device.
//
// Writes are encoded as they arrive; an incomplete multi-byte sequence at
// the end of a write is held until the next write or Flush.
type Encoded struct {
	inner ReadWriter
	loc   Locale
	r     *transform.Reader
	w     *transform.Writer
}

var (
	_ ReadWriter = (*Encoded)(nil)
	_ Localizer  = (*Encoded)(nil)
	_ Flusher    = (*Encoded)(nil)
)

// NewEncoded wraps inner with the encoding of loc.
func NewEncoded(inner ReadWriter, loc Locale) *Encoded {
	d := &Encoded{inner: inner}
	d.Imbue(loc)
	return d
}

// IsOpen reports whether the inner device is open.
func (d *Encoded) IsOpen() bool { return d.inner.IsOpen() }

// Inner returns the wrapped device.
func (d *Encoded) Inner() ReadWriter { return d.inner }

// Locale returns the current locale.
func (d *Encoded) Locale() Locale { return d.loc }

// Imbue switches to loc and returns the previous locale. Bytes held for an
// incomplete sequence under the old encoding are dropped, and so is any
// decoded text not yet read.
func (d *Encoded) Imbue(loc Locale) Locale {
	old := d.loc
	enc := loc.Codec().Encoding()
	d.loc = loc
	d.r = transform.NewReader(d.inner, enc.NewDecoder())
	d.w = transform.NewWriter(d.inner, enc.NewEncoder())
	return old
}

// Read returns decoded UTF-8 text.
func (d *Encoded) Read(p []byte) (int, error) {
	mustOpen(d.inner.IsOpen(), "encoded device", "read")
	n, err := d.r.Read(p)
	return n, wrapErr("decode", d.loc.Name(), err)
}

// Write encodes p to the inner device.
func (d *Encoded) Write(p []byte) (int, error) {
	mustOpen(d.inner.IsOpen(), "encoded device", "write")
	n, err := d.w.Write(p)
	return n, wrapErr("encode", d.loc.Name(), err)
}

// Flush encodes any held bytes and, when the inner device is a Flusher,
// flushes it too.
func (d *Encoded) Flush() error {
	mustOpen(d.inner.IsOpen(), "encoded device", "flush")
	if err := d.w.Close(); err != nil {
		return wrapErr("encode", d.loc.Name(), err)
	}
	d.w = transform.NewWriter(d.inner, d.loc.Codec().Encoding().NewEncoder())
	if f, ok := d.inner.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
