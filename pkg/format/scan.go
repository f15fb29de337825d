package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"math"
)

type scanFunc func(st State, v any, spec string) error

var scanFuncs = [kindCount]scanFunc{
	KindBool: scanBool,
	KindInt: func(st State, v any, spec string) error {
		return scanSigned(st, v.(*int), KindInt, baseOf(spec), math.MaxInt)
	},
	KindInt8: func(st State, v any, spec string) error {
		return scanSigned(st, v.(*int8), KindInt8, baseOf(spec), math.MaxInt8)
	},
	KindInt16: func(st State, v any, spec string) error {
		return scanSigned(st, v.(*int16), KindInt16, baseOf(spec), math.MaxInt16)
	},
	KindInt32: func(st State, v any, spec string) error {
		return scanSigned(st, v.(*int32), KindInt32, baseOf(spec), math.MaxInt32)
	},
	KindInt64: func(st State, v any, spec string) error {
		return scanSigned(st, v.(*int64), KindInt64, baseOf(spec), math.MaxInt64)
	},
	KindUint: func(st State, v any, spec string) error {
		return scanUnsigned(st, v.(*uint), KindUint, baseOf(spec), math.MaxUint)
	},
	KindUint8: func(st State, v any, spec string) error {
		return scanUnsigned(st, v.(*uint8), KindUint8, baseOf(spec), math.MaxUint8)
	},
	KindUint16: func(st State, v any, spec string) error {
		return scanUnsigned(st, v.(*uint16), KindUint16, baseOf(spec), math.MaxUint16)
	},
	KindUint32: func(st State, v any, spec string) error {
		return scanUnsigned(st, v.(*uint32), KindUint32, baseOf(spec), math.MaxUint32)
	},
	KindUint64: func(st State, v any, spec string) error {
		return scanUnsigned(st, v.(*uint64), KindUint64, baseOf(spec), math.MaxUint64)
	},
	KindFloat32: func(st State, v any, _ string) error {
		f, err := scanFloat(st, KindFloat32, math.MaxFloat32)
		if err == nil {
			*v.(*float32) = float32(f)
		}
		return err
	},
	KindFloat64: func(st State, v any, _ string) error {
		f, err := scanFloat(st, KindFloat64, math.MaxFloat64)
		if err == nil {
			*v.(*float64) = f
		}
		return err
	},
	KindString: func(st State, v any, _ string) error {
		w, err := scanWord(st, nil, -1)
		if err == nil {
			*v.(*string) = string(w)
		}
		return err
	},
	KindBytes: func(st State, v any, _ string) error {
		p := v.(*[]byte)
		w, err := scanWord(st, (*p)[:0], -1)
		if err == nil {
			*p = w
		}
		return err
	},
	KindSpan: func(st State, v any, _ string) error {
		s := v.(*Span)
		if len(s.Buf) == 0 {
			panic("format: scan into a Span without capacity")
		}
		w, err := scanWord(st, s.Buf[:0], len(s.Buf))
		if err == nil {
			s.Len = len(w)
		}
		return err
	},
	KindCustom: func(st State, v any, spec string) error {
		return v.(Scanner).ScanFrom(st, spec)
	},
	KindText: scanText,
}

// Scan reads values from st into args as directed by format and returns
// the number of arguments assigned.
//
// A whitespace character in format matches any run of whitespace in the
// input, including none; other literal text must match exactly. Scan stops
// at the first failure. It returns io.EOF when input ends before an
// argument or literal could be read, a *ParseError for malformed input and
// any other error from st unchanged.
func Scan(st State, format string, args ...any) (int, error) {
	dirs := parseFormat(format, len(args))
	n := 0
	for _, d := range dirs {
		if !d.hole {
			if err := matchLiteral(st, d.text); err != nil {
				return n, err
			}
			continue
		}
		a := ScanArg(args[n])
		if err := scanFuncs[a.Kind](st, a.Value, d.text); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Sscan scans the string input.
func Sscan(input string, format string, args ...any) (int, error) {
	return Scan(&stringState{s: input}, format, args...)
}

// stringState is a State over a string.
type stringState struct {
	s    string
	pos  int
	back []byte
}

func (st *stringState) ReadByte() (byte, error) {
	if n := len(st.back); n > 0 {
		c := st.back[n-1]
		st.back = st.back[:n-1]
		return c, nil
	}
	if st.pos >= len(st.s) {
		return 0, io.EOF
	}
	c := st.s[st.pos]
	st.pos++
	return c, nil
}

func (st *stringState) Unread(p ...byte) {
	for i := len(p) - 1; i >= 0; i-- {
		st.back = append(st.back, p[i])
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skipSpace consumes whitespace and returns the first other byte.
func skipSpace(st State) (byte, error) {
	for {
		c, err := st.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, nil
		}
	}
}

// next reads one byte. ok is false at end of input.
func next(st State) (c byte, ok bool, err error) {
	c, err = st.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	return c, err == nil, err
}

func matchLiteral(st State, lit string) error {
	for i := 0; i < len(lit); i++ {
		want := lit[i]
		if isSpace(want) {
			c, err := skipSpace(st)
			if err == io.EOF {
				continue
			}
			if err != nil {
				return err
			}
			st.Unread(c)
			continue
		}
		c, err := st.ReadByte()
		if err != nil {
			return err
		}
		if c != want {
			st.Unread(c)
			return &ParseError{Kind: KindInvalid, Input: string(c), Err: ErrMismatch}
		}
	}
	return nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

// scanMagnitude parses an optionally signed integer in base and returns
// its magnitude. limit bounds the magnitude of positive values; negative
// values may reach limit+1. A minus sign is a syntax error when allowNeg is
// false.
func scanMagnitude(st State, kind Kind, base int, limit uint64, allowNeg bool) (uint64, bool, error) {
	c, err := skipSpace(st)
	if err != nil {
		return 0, false, err
	}
	tok := []byte{c}
	neg := false
	if c == '+' || c == '-' {
		if c == '-' && !allowNeg {
			return 0, false, &ParseError{Kind: kind, Input: string(tok), Err: ErrSyntax}
		}
		neg = c == '-'
		var ok bool
		c, ok, err = next(st)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, &ParseError{Kind: kind, Input: string(tok), Err: ErrSyntax}
		}
		tok = append(tok, c)
	}

	bound := limit
	if neg {
		bound++
	}
	var mag uint64
	ndigits := 0
	overflow := false
	for {
		d := digitValue(c)
		if d >= base {
			st.Unread(c)
			tok = tok[:len(tok)-1]
			break
		}
		ndigits++
		if !overflow {
			if mag > (bound-uint64(d))/uint64(base) {
				overflow = true
			} else {
				mag = mag*uint64(base) + uint64(d)
			}
		}
		var ok bool
		c, ok, err = next(st)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			break
		}
		tok = append(tok, c)
	}
	switch {
	case ndigits == 0:
		return 0, false, &ParseError{Kind: kind, Input: string(tok), Err: ErrSyntax}
	case overflow:
		return 0, false, &ParseError{Kind: kind, Input: string(tok), Err: ErrRange}
	}
	return mag, neg, nil
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func scanSigned[T signed](st State, p *T, kind Kind, base int, limit uint64) error {
	mag, neg, err := scanMagnitude(st, kind, base, limit, true)
	if err != nil {
		return err
	}
	if neg && mag > 0 {
		// mag may be limit+1, which only fits after negation.
		*p = -T(mag-1) - 1
		return nil
	}
	*p = T(mag)
	return nil
}

func scanUnsigned[T unsigned](st State, p *T, kind Kind, base int, limit uint64) error {
	mag, _, err := scanMagnitude(st, kind, base, limit, false)
	if err != nil {
		return err
	}
	*p = T(mag)
	return nil
}

// pow10 holds the powers of ten exactly representable as float64.
var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20,
	1e21, 1e22,
}

const (
	maxMantissaDigits = 19
	maxExponent       = 100000
)

// scaleFloat returns mant * 10^exp.
func scaleFloat(mant uint64, exp int) float64 {
	f := float64(mant)
	if f == 0 {
		return 0
	}
	last := len(pow10) - 1
	for exp > last {
		f *= pow10[last]
		exp -= last
		if math.IsInf(f, 0) {
			return f
		}
	}
	for exp < -last {
		f /= pow10[last]
		exp += last
		if f == 0 {
			return 0
		}
	}
	if exp >= 0 {
		return f * pow10[exp]
	}
	return f / pow10[-exp]
}

// scanFloat parses a decimal float: sign, digits with at most one '.',
// and an optional exponent. An exponent marker not followed by digits is
// returned to the input.
func scanFloat(st State, kind Kind, max float64) (float64, error) {
	c, err := skipSpace(st)
	if err != nil {
		return 0, err
	}
	var tok []byte
	neg := false
	ok := true
	if c == '+' || c == '-' {
		neg = c == '-'
		tok = append(tok, c)
		if c, ok, err = next(st); err != nil {
			return 0, err
		}
	}

	var mant uint64
	exp := 0
	ndigits := 0 // significant digits
	sawDigit := false
	sawDot := false
loop:
	for ok {
		switch {
		case c == '0' && mant == 0:
			sawDigit = true
			if sawDot {
				exp--
			}
		case c >= '0' && c <= '9':
			sawDigit = true
			ndigits++
			switch {
			case ndigits <= maxMantissaDigits:
				mant = mant*10 + uint64(c-'0')
				if sawDot {
					exp--
				}
			case !sawDot:
				exp++
			}
		case c == '.':
			if sawDot {
				tok = append(tok, c)
				return 0, &ParseError{Kind: kind, Input: string(tok), Err: ErrSyntax}
			}
			sawDot = true
		default:
			break loop
		}
		tok = append(tok, c)
		if c, ok, err = next(st); err != nil {
			return 0, err
		}
	}
	if !sawDigit {
		if ok {
			st.Unread(c)
		}
		return 0, &ParseError{Kind: kind, Input: string(tok), Err: ErrSyntax}
	}
	if ok && (c == 'e' || c == 'E') {
		e, err := scanExponent(st, c)
		if err != nil {
			return 0, err
		}
		exp += e
	} else if ok {
		st.Unread(c)
	}

	f := scaleFloat(mant, exp)
	if f > max {
		return 0, &ParseError{Kind: kind, Input: string(tok), Err: ErrRange}
	}
	if neg {
		f = -f
	}
	return f, nil
}

// scanExponent parses the digits after an exponent marker. Without digits
// the marker, any sign and the byte that followed are unread and the
// exponent is zero.
func scanExponent(st State, marker byte) (int, error) {
	read := []byte{marker}
	c, ok, err := next(st)
	if err != nil {
		return 0, err
	}
	neg := false
	if ok && (c == '+' || c == '-') {
		neg = c == '-'
		read = append(read, c)
		c, ok, err = next(st)
		if err != nil {
			return 0, err
		}
	}
	if !ok || c < '0' || c > '9' {
		if ok {
			read = append(read, c)
		}
		st.Unread(read...)
		return 0, nil
	}
	e := 0
	for ok && c >= '0' && c <= '9' {
		if e < maxExponent {
			e = e*10 + int(c-'0')
		}
		c, ok, err = next(st)
		if err != nil {
			return 0, err
		}
	}
	if ok {
		st.Unread(c)
	}
	if neg {
		e = -e
	}
	return e, nil
}

func scanBool(st State, v any, _ string) error {
	p := v.(*bool)
	c, err := skipSpace(st)
	if err != nil {
		return err
	}
	if c >= '0' && c <= '9' {
		st.Unread(c)
		var n uint64
		if err := scanUnsigned(st, &n, KindBool, 10, math.MaxUint64); err != nil {
			return err
		}
		*p = n != 0
		return nil
	}

	var want string
	switch c {
	case 't':
		want = "true"
	case 'f':
		want = "false"
	default:
		st.Unread(c)
		return &ParseError{Kind: KindBool, Input: string(c), Err: ErrSyntax}
	}
	tok := []byte{c}
	for i := 1; i < len(want); i++ {
		c, ok, err := next(st)
		if err != nil {
			return err
		}
		if !ok {
			return &ParseError{Kind: KindBool, Input: string(tok), Err: ErrSyntax}
		}
		if c != want[i] {
			st.Unread(c)
			return &ParseError{Kind: KindBool, Input: string(tok), Err: ErrSyntax}
		}
		tok = append(tok, c)
	}
	*p = want == "true"
	return nil
}

// scanWord skips whitespace and appends the following run of
// non-whitespace bytes to dst. The delimiter is unread. With limit >= 0
// at most limit bytes are taken; the rest of the word stays in the input.
func scanWord(st State, dst []byte, limit int) ([]byte, error) {
	c, err := skipSpace(st)
	if err != nil {
		return dst, err
	}
	for {
		if limit >= 0 && len(dst) >= limit {
			st.Unread(c)
			return dst, nil
		}
		dst = append(dst, c)
		var ok bool
		c, ok, err = next(st)
		if err != nil {
			return dst, err
		}
		if !ok {
			return dst, nil
		}
		if isSpace(c) {
			st.Unread(c)
			return dst, nil
		}
	}
}

func scanText(st State, v any, _ string) error {
	w, err := scanWord(st, nil, -1)
	if err != nil {
		return err
	}
	if err := v.(encoding.TextUnmarshaler).UnmarshalText(w); err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return err
		}
		return &ParseError{Kind: KindText, Input: string(w), Err: fmt.Errorf("%w: %w", ErrSyntax, err)}
	}
	return nil
}
