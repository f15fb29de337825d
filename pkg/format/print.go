package format

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"math"
)

type printFunc func(p *printer, v any, spec string)

var printFuncs = [kindCount]printFunc{
	KindBool:    printBool,
	KindInt:     func(p *printer, v any, spec string) { p.signed(int64(v.(int)), spec) },
	KindInt8:    func(p *printer, v any, spec string) { p.signed(int64(v.(int8)), spec) },
	KindInt16:   func(p *printer, v any, spec string) { p.signed(int64(v.(int16)), spec) },
	KindInt32:   func(p *printer, v any, spec string) { p.signed(int64(v.(int32)), spec) },
	KindInt64:   func(p *printer, v any, spec string) { p.signed(v.(int64), spec) },
	KindUint:    func(p *printer, v any, spec string) { p.unsigned(uint64(v.(uint)), spec) },
	KindUint8:   func(p *printer, v any, spec string) { p.unsigned(uint64(v.(uint8)), spec) },
	KindUint16:  func(p *printer, v any, spec string) { p.unsigned(uint64(v.(uint16)), spec) },
	KindUint32:  func(p *printer, v any, spec string) { p.unsigned(uint64(v.(uint32)), spec) },
	KindUint64:  func(p *printer, v any, spec string) { p.unsigned(v.(uint64), spec) },
	KindFloat32: func(p *printer, v any, _ string) { p.float(float64(v.(float32))) },
	KindFloat64: func(p *printer, v any, _ string) { p.float(v.(float64)) },
	KindString:  func(p *printer, v any, _ string) { p.writeString(v.(string)) },
	KindBytes:   func(p *printer, v any, _ string) { p.write(v.([]byte)) },
	KindSpan:    func(p *printer, v any, _ string) { p.write(v.(*Span).Bytes()) },
	KindCustom:  printCustom,
	KindText:    printText,
}

// printer writes formatted output to w and keeps the first error.
type printer struct {
	w    io.Writer
	opts *Options
	err  error
}

func (p *printer) write(b []byte) {
	if p.err != nil || len(b) == 0 {
		return
	}
	_, p.err = p.w.Write(b)
}

func (p *printer) writeString(s string) {
	if p.err != nil || len(s) == 0 {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) signed(v int64, spec string) {
	var buf [65]byte
	p.write(formatInt(&buf, v, baseOf(spec)))
}

func (p *printer) unsigned(v uint64, spec string) {
	var buf [65]byte
	p.write(formatUint(&buf, v, baseOf(spec), false))
}

func (p *printer) float(v float64) {
	var buf [64]byte
	p.write(appendFloat(buf[:0], v))
}

// Print writes args to w as directed by format.
func Print(w io.Writer, opts Options, format string, args ...any) error {
	p := printer{w: w, opts: &opts}
	dirs := parseFormat(format, len(args))
	i := 0
	for _, d := range dirs {
		if !d.hole {
			p.writeString(d.text)
			continue
		}
		a := PrintArg(args[i])
		i++
		printFuncs[a.Kind](&p, a.Value, d.text)
		if p.err != nil {
			break
		}
	}
	return p.err
}

// Println is Print followed by a newline.
func Println(w io.Writer, opts Options, format string, args ...any) error {
	if err := Print(w, opts, format, args...); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Sprint returns the formatted text as a string.
func Sprint(opts Options, format string, args ...any) string {
	var b bytes.Buffer
	Print(&b, opts, format, args...)
	return b.String()
}

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// formatUint writes the digits of u in base right-aligned into buf and
// returns them. neg prepends a minus sign.
func formatUint(buf *[65]byte, u uint64, base int, neg bool) []byte {
	i := len(buf)
	b := uint64(base)
	for u >= b {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	i--
	buf[i] = digits[u]
	if neg {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

func formatInt(buf *[65]byte, v int64, base int) []byte {
	if v < 0 {
		// -(v+1)+1 avoids overflow at math.MinInt64.
		return formatUint(buf, uint64(-(v+1))+1, base, true)
	}
	return formatUint(buf, uint64(v), base, false)
}

const (
	fracDigits = 6
	fracScale  = 1e6
	expLow     = 1e-6
	expHigh    = 1e19

	// subnormalExp is the decimal exponent below which math.Pow10 loses
	// precision.
	subnormalExp = -300
)

// appendFloat appends v with six fractional digits, trailing zeros trimmed
// to at least one. Magnitudes outside [1e-6, 1e19) get a decimal exponent.
func appendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}
	if v < 0 {
		dst = append(dst, '-')
		v = -v
	}
	if v == 0 || (v >= expLow && v < expHigh) {
		ip, fp := splitFloat(v)
		return appendFixed(dst, ip, fp)
	}

	exp := int(math.Floor(math.Log10(v)))
	var m float64
	if exp < subnormalExp {
		// 10^exp underflows for subnormals; scale up first.
		m = v * 1e100 / math.Pow10(exp+100)
	} else {
		m = v / math.Pow10(exp)
	}
	// Log10 can be off by one near powers of ten.
	if m >= 10 {
		m /= 10
		exp++
	} else if m < 1 {
		m *= 10
		exp--
	}
	ip, fp := splitFloat(m)
	if ip >= 10 {
		ip, fp = 1, 0
		exp++
		if exp == -fracDigits {
			// Rounded up to 1e-6, which prints in fixed form.
			return appendFixed(dst, 0, 1)
		}
	}
	dst = appendFixed(dst, ip, fp)
	dst = append(dst, 'e')
	var buf [65]byte
	return append(dst, formatInt(&buf, int64(exp), 10)...)
}

// splitFloat splits a non-negative v below 1e19 into its integral part and
// its fractional part rounded to six digits.
func splitFloat(v float64) (ip, fp uint64) {
	i, f := math.Modf(v)
	ip = uint64(i)
	fp = uint64(math.Round(f * fracScale))
	if fp >= fracScale {
		ip++
		fp -= fracScale
	}
	return ip, fp
}

func appendFixed(dst []byte, ip, fp uint64) []byte {
	var buf [65]byte
	dst = append(dst, formatUint(&buf, ip, 10, false)...)
	dst = append(dst, '.')

	var frac [fracDigits]byte
	for i := fracDigits - 1; i >= 0; i-- {
		frac[i] = byte('0' + fp%10)
		fp /= 10
	}
	n := fracDigits
	for n > 1 && frac[n-1] == '0' {
		n--
	}
	return append(dst, frac[:n]...)
}

func printBool(p *printer, v any, _ string) {
	b := v.(bool)
	switch {
	case p.opts.BoolAlpha && b:
		p.writeString("true")
	case p.opts.BoolAlpha:
		p.writeString("false")
	case b:
		p.writeString("1")
	default:
		p.writeString("0")
	}
}

func printCustom(p *printer, v any, spec string) {
	if err := v.(Printer).PrintTo(p.w, spec); err != nil {
		p.err = err
	}
}

func printText(p *printer, v any, spec string) {
	if m, ok := v.(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		if err != nil {
			p.err = fmt.Errorf("format: marshal %T: %w", v, err)
			return
		}
		p.write(b)
		return
	}
	s, err := p.opts.text()(spec, v)
	if err != nil {
		p.err = fmt.Errorf("format: text %T: %w", v, err)
		return
	}
	p.writeString(s)
}
