// Package codec converts text between the UTF-8 form used by streams and the
// character encoding of a device.
//
// Codecs are thin wrappers over golang.org/x/text encodings. The wide codec
// writes fixed-width UTF-16 code units in the machine's native byte order,
// so files written with it are not portable across endianness.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknown is returned by Lookup for names no codec is registered under.
var ErrUnknown = errors.New("codec: unknown encoding")

// Codec converts between UTF-8 text and device bytes.
type Codec interface {
	// Name returns the canonical codec name.
	Name() string

	// Encode converts UTF-8 text to device bytes.
	Encode(text []byte) ([]byte, error)

	// Decode converts device bytes to UTF-8 text.
	Decode(b []byte) ([]byte, error)

	// Encoding exposes the underlying x/text encoding for streaming use.
	Encoding() encoding.Encoding
}

type xcodec struct {
	name string
	enc  encoding.Encoding
}

func (c *xcodec) Name() string                { return c.name }
func (c *xcodec) Encoding() encoding.Encoding { return c.enc }

func (c *xcodec) Encode(text []byte) ([]byte, error) {
	b, err := c.enc.NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", c.name, err)
	}
	return b, nil
}

func (c *xcodec) Decode(b []byte) ([]byte, error) {
	text, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", c.name, err)
	}
	return text, nil
}

// New wraps an x/text encoding under the given name.
func New(name string, enc encoding.Encoding) Codec {
	return &xcodec{name: name, enc: enc}
}

var (
	// UTF8 passes bytes through unchanged.
	UTF8 = New("utf-8", encoding.Nop)

	// Latin1 is ISO 8859-1.
	Latin1 = New("iso-8859-1", charmap.ISO8859_1)

	// Wide is UTF-16 without a byte order mark, in native byte order.
	Wide = New("wide", unicode.UTF16(nativeEndianness(), unicode.IgnoreBOM))
)

// WideUnit is the size in bytes of one wide code unit.
const WideUnit = 2

func nativeEndianness() unicode.Endianness {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return unicode.LittleEndian
	}
	return unicode.BigEndian
}

// Lookup returns the codec for name. The empty name, "C" and "POSIX" select
// UTF8; "wide" selects Wide; anything else is resolved through the WHATWG
// encoding index (for example "utf-16le", "latin1", "shift_jis").
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "c", "posix", "utf-8", "utf8":
		return UTF8, nil
	case "wide":
		return Wide, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return New(canonical, enc), nil
}
