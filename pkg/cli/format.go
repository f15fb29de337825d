package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes formats a byte count with IEC units, e.g. "4.0 KiB".
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// FormatCount formats a count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatAge formats a time relative to now, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// parseSize parses a byte size such as "4096", "64k" or "1MiB".
func parseSize(key, value string) (int, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%s: %s is too large", key, value)
	}
	return int(n), nil
}
