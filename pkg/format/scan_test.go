package format

import (
	"errors"
	"io"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMixed(t *testing.T) {
	var (
		n int
		s string
	)
	got, err := Sscan("42 ok", "{} {}", &n, &s)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 42, n)
	assert.Equal(t, "ok", s)
}

func TestScanInt(t *testing.T) {
	tests := []struct {
		input  string
		format string
		dst    any
		want   any
		err    error
	}{
		{"0", "{}", new(int), 0, nil},
		{"  -273", "{}", new(int), -273, nil},
		{"+17", "{}", new(int), 17, nil},
		{"ff", "{x}", new(int), 255, nil},
		{"FF", "{x}", new(uint8), uint8(255), nil},
		{"777", "{o}", new(uint16), uint16(511), nil},
		{"101", "{b}", new(int8), int8(5), nil},
		{"-128", "{}", new(int8), int8(-128), nil},
		{"127", "{}", new(int8), int8(127), nil},
		{"128", "{}", new(int8), nil, ErrRange},
		{"-129", "{}", new(int8), nil, ErrRange},
		{"255", "{}", new(uint8), uint8(255), nil},
		{"256", "{}", new(uint8), nil, ErrRange},
		{"-1", "{}", new(uint), nil, ErrSyntax},
		{"-9223372036854775808", "{}", new(int64), int64(math.MinInt64), nil},
		{"9223372036854775808", "{}", new(int64), nil, ErrRange},
		{"18446744073709551615", "{}", new(uint64), uint64(math.MaxUint64), nil},
		{"18446744073709551616", "{}", new(uint64), nil, ErrRange},
		{"abc", "{}", new(int), nil, ErrSyntax},
		{"-", "{}", new(int32), nil, ErrSyntax},
		{"", "{}", new(int), nil, io.EOF},
		{"   ", "{}", new(int), nil, io.EOF},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			_, err := Sscan(tt.input, tt.format, tt.dst)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			switch p := tt.dst.(type) {
			case *int:
				assert.Equal(t, tt.want, *p)
			case *int8:
				assert.Equal(t, tt.want, *p)
			case *int32:
				assert.Equal(t, tt.want, *p)
			case *int64:
				assert.Equal(t, tt.want, *p)
			case *uint8:
				assert.Equal(t, tt.want, *p)
			case *uint16:
				assert.Equal(t, tt.want, *p)
			case *uint64:
				assert.Equal(t, tt.want, *p)
			default:
				t.Fatalf("unexpected destination %T", p)
			}
		})
	}
}

func TestScanIntStopsAtNonDigit(t *testing.T) {
	var (
		n int
		s string
	)
	_, err := Sscan("12abc", "{}{}", &n, &s)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "abc", s)
}

func TestScanRangeErrorConsumesNumber(t *testing.T) {
	var (
		n int8
		s string
	)
	st := &stringState{s: "1000 next"}
	_, err := Scan(st, "{}", &n)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInt8, perr.Kind)
	assert.Equal(t, "1000", perr.Input)
	_, err = Scan(st, "{}", &s)
	require.NoError(t, err)
	assert.Equal(t, "next", s)
}

func TestScanFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		err   error
	}{
		{"3.25", 3.25, nil},
		{"-1.5e3", -1500, nil},
		{"0.1", 0.1, nil},
		{".5", 0.5, nil},
		{"5.", 5, nil},
		{"123.456", 123.456, nil},
		{"1E-2", 0.01, nil},
		{"2.5e+2", 250, nil},
		{"1e30", 1e30, nil},
		{"12345678901234567890123", 1.2345678901234568e22, nil},
		{"1e400", 0, ErrRange},
		{"1e-400", 0, nil},
		{"1.2.3", 0, ErrSyntax},
		{".", 0, ErrSyntax},
		{"-x", 0, ErrSyntax},
		{"", 0, io.EOF},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			var f float64
			_, err := Sscan(tt.input, "{}", &f)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want+1, f+1, 1e-12)
		})
	}
}

func TestScanFloatLeadingZeros(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0000000000000000000012", 12},
		{"0.00000000000000000000123", 1.23e-21},
		{"000000000000000000000.5", 0.5},
		{"0.000000000000000000000000000001e10", 1e-20},
		{"00000000000000000000123456789012345678901", 1.2345678901234568e20},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f float64
			_, err := Sscan(tt.input, "{}", &f)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, f, 1e-12)
		})
	}

	var f float64
	_, err := Sscan("000", "{}", &f)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)
}

func TestScanFloat32Range(t *testing.T) {
	var f float32
	_, err := Sscan("3.4e39", "{}", &f)
	assert.ErrorIs(t, err, ErrRange)

	_, err = Sscan("0.25", "{}", &f)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), f)
}

func TestScanFloatExponentWithoutDigits(t *testing.T) {
	tests := []struct {
		input string
		rest  string
	}{
		{"2e", "e"},
		{"2e+x", "e+x"},
		{"2ex", "ex"},
	}
	for _, tt := range tests {
		var (
			f float64
			s string
		)
		_, err := Sscan(tt.input, "{}{}", &f, &s)
		require.NoError(t, err, tt.input)
		assert.Equal(t, 2.0, f)
		assert.Equal(t, tt.rest, s, tt.input)
	}
}

func TestScanBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		err   error
	}{
		{"true", true, nil},
		{"false", false, nil},
		{"1", true, nil},
		{"0", false, nil},
		{"42", true, nil},
		{"yes", false, ErrSyntax},
		{"tru", false, ErrSyntax},
		{"fals3", false, ErrSyntax},
		{"", false, io.EOF},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			var b bool
			_, err := Sscan(tt.input, "{}", &b)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestScanWords(t *testing.T) {
	st := &stringState{s: "  Hello world"}
	var a, b string
	_, err := Scan(st, "{}", &a)
	require.NoError(t, err)
	assert.Equal(t, "Hello", a)
	_, err = Scan(st, "{}", &b)
	require.NoError(t, err)
	assert.Equal(t, "world", b)
	_, err = Scan(st, "{}", &b)
	assert.Equal(t, io.EOF, err)
}

func TestScanBytesReusesStorage(t *testing.T) {
	buf := make([]byte, 0, 16)
	_, err := Sscan("abc", "{}", &buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))
	assert.Equal(t, 16, cap(buf))
}

func TestScanSpan(t *testing.T) {
	span := NewSpan(make([]byte, 3))
	var rest string
	_, err := Sscan("abcdef", "{}{}", span, &rest)
	require.NoError(t, err)
	assert.Equal(t, "abc", span.String())
	assert.Equal(t, "def", rest)
}

func TestScanEmptySpanPanics(t *testing.T) {
	assert.PanicsWithValue(t, "format: scan into a Span without capacity", func() {
		Sscan("abc", "{}", NewSpan(nil))
	})
}

func TestScanLiterals(t *testing.T) {
	var a, b int
	n, err := Sscan("1\n\t 2", "{} {}", &a, &b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b)

	n, err = Sscan("1,2", "{};{}", &a, &b)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrMismatch)

	n, err = Sscan("{7}", "{{{}}", &a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, a)

	_, err = Sscan("1", "{},", &a)
	assert.Equal(t, io.EOF, err)
}

type pair struct{ a, b int }

func (p *pair) ScanFrom(st State, spec string) error {
	_, err := Scan(st, "{"+spec+"}:{"+spec+"}", &p.a, &p.b)
	return err
}

func (l *level) UnmarshalText(b []byte) error {
	for _, c := range b {
		if c != '*' {
			return errors.New("not a level")
		}
	}
	*l = level(len(b))
	return nil
}

func TestScanCustom(t *testing.T) {
	var p pair
	_, err := Sscan("a:ff", "{x}", &p)
	require.NoError(t, err)
	assert.Equal(t, pair{10, 255}, p)

	var l level
	_, err = Sscan("  *** x", "{}", &l)
	require.NoError(t, err)
	assert.Equal(t, level(3), l)

	_, err = Sscan("*-*", "{}", &l)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestScanUnsupportedDestinationPanics(t *testing.T) {
	assert.PanicsWithValue(t, "format: cannot scan into int", func() {
		Sscan("1", "{}", 1)
	})
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Sscan("300", "{}", new(uint8))
	assert.EqualError(t, err, `format: scan uint8 "300": format: value out of range`)
}
