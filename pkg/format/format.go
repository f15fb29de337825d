// Package format implements the typed scan and print dispatch used by
// streams.
//
// A format string holds literal text and {} placeholders, one per argument.
// A placeholder may carry a one-letter spec selecting the integer base:
// {d} (decimal, the default), {x}, {o} and {b}. "{{" is a literal '{'.
//
// Each argument is classified once into an Arg (kind and value) and handed
// to the function registered for its kind. Numbers are parsed and printed
// by hand and never depend on the locale.
//
// Values outside the built-in kinds are printed through Printer, then
// encoding.TextMarshaler, then Options.Text. Scan destinations outside the
// built-in kinds must implement Scanner or encoding.TextUnmarshaler.
package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind classifies a format argument.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindSpan
	KindCustom
	KindText
	kindCount
)

var kindNames = [kindCount]string{
	"literal", "bool",
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64",
	"float32", "float64",
	"string", "bytes", "span", "custom", "text",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Arg is one classified format argument.
type Arg struct {
	Kind  Kind
	Value any
}

// PrintArg classifies a value to be printed.
func PrintArg(v any) Arg {
	var k Kind
	switch v.(type) {
	case bool:
		k = KindBool
	case int:
		k = KindInt
	case int8:
		k = KindInt8
	case int16:
		k = KindInt16
	case int32:
		k = KindInt32
	case int64:
		k = KindInt64
	case uint:
		k = KindUint
	case uint8:
		k = KindUint8
	case uint16:
		k = KindUint16
	case uint32:
		k = KindUint32
	case uint64:
		k = KindUint64
	case float32:
		k = KindFloat32
	case float64:
		k = KindFloat64
	case string:
		k = KindString
	case []byte:
		k = KindBytes
	case *Span:
		k = KindSpan
	case Printer:
		k = KindCustom
	default:
		k = KindText
	}
	return Arg{Kind: k, Value: v}
}

// ScanArg classifies a scan destination. It panics if p is neither a
// pointer to a built-in kind nor a Scanner or encoding.TextUnmarshaler.
func ScanArg(p any) Arg {
	var k Kind
	switch p.(type) {
	case *bool:
		k = KindBool
	case *int:
		k = KindInt
	case *int8:
		k = KindInt8
	case *int16:
		k = KindInt16
	case *int32:
		k = KindInt32
	case *int64:
		k = KindInt64
	case *uint:
		k = KindUint
	case *uint8:
		k = KindUint8
	case *uint16:
		k = KindUint16
	case *uint32:
		k = KindUint32
	case *uint64:
		k = KindUint64
	case *float32:
		k = KindFloat32
	case *float64:
		k = KindFloat64
	case *string:
		k = KindString
	case *[]byte:
		k = KindBytes
	case *Span:
		k = KindSpan
	case Scanner:
		k = KindCustom
	case encoding.TextUnmarshaler:
		k = KindText
	default:
		panic(fmt.Sprintf("format: cannot scan into %T", p))
	}
	return Arg{Kind: k, Value: p}
}

// Printer is implemented by types that print themselves.
type Printer interface {
	PrintTo(w io.Writer, spec string) error
}

// Scanner is implemented by types that parse themselves from a stream.
type Scanner interface {
	ScanFrom(st State, spec string) error
}

// State is the input side of a scan. ReadByte returns io.EOF at end of
// input. Unread returns bytes to the input so that they are read next, in
// order.
type State interface {
	io.ByteReader
	Unread(p ...byte)
}

// TextFormatter renders values no built-in kind covers.
type TextFormatter func(spec string, v any) (string, error)

// Options control print and scan behavior.
type Options struct {
	// BoolAlpha prints booleans as true/false instead of 1/0.
	BoolAlpha bool

	// Text renders values of unknown types. Nil means fmt.Sprint.
	Text TextFormatter
}

// DefaultOptions returns the options streams start with.
func DefaultOptions() Options {
	return Options{BoolAlpha: true}
}

func (o *Options) text() TextFormatter {
	if o.Text != nil {
		return o.Text
	}
	return sprintText
}

func sprintText(_ string, v any) (string, error) {
	return fmt.Sprint(v), nil
}

var (
	// ErrSyntax means the input does not have the form of the target kind.
	ErrSyntax = errors.New("format: invalid syntax")

	// ErrRange means the value does not fit the target kind.
	ErrRange = errors.New("format: value out of range")

	// ErrMismatch means literal format text did not match the input.
	ErrMismatch = errors.New("format: input does not match format")
)

// ParseError records a failed scan of one argument or literal.
type ParseError struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return "format: scan " + e.Kind.String() + " " + strconv.Quote(e.Input) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Span is a fixed-capacity text destination. Scanning into a Span fills
// Buf[:Len] and never grows Buf.
type Span struct {
	Buf []byte
	Len int
}

// NewSpan returns an empty Span over buf.
func NewSpan(buf []byte) *Span { return &Span{Buf: buf} }

// Bytes returns the filled part of the span.
func (s *Span) Bytes() []byte { return s.Buf[:s.Len] }

func (s *Span) String() string { return string(s.Bytes()) }

// directive is one parsed piece of a format string: literal text when
// hole is false, a placeholder with its spec otherwise.
type directive struct {
	hole bool
	text string
}

// parseFormat splits format into directives and checks that it has exactly
// nargs placeholders.
func parseFormat(format string, nargs int) []directive {
	var out []directive
	holes := 0
	lit := make([]byte, 0, len(format))
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '{' {
			lit = append(lit, c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '{' {
			lit = append(lit, '{')
			i++
			continue
		}
		end := i + 1
		for end < len(format) && format[end] != '}' {
			end++
		}
		if end == len(format) {
			panic(fmt.Sprintf("format: unclosed placeholder in %q", format))
		}
		if len(lit) > 0 {
			out = append(out, directive{text: string(lit)})
			lit = lit[:0]
		}
		out = append(out, directive{hole: true, text: format[i+1 : end]})
		holes++
		i = end
	}
	if len(lit) > 0 {
		out = append(out, directive{text: string(lit)})
	}
	if holes != nargs {
		panic(fmt.Sprintf("format: %q has %d placeholders for %d arguments", format, holes, nargs))
	}
	return out
}

// baseOf returns the integer base selected by a placeholder spec.
func baseOf(spec string) int {
	switch spec {
	case "", "d":
		return 10
	case "x":
		return 16
	case "o":
		return 8
	case "b":
		return 2
	}
	panic(fmt.Sprintf("format: invalid integer spec %q", spec))
}
