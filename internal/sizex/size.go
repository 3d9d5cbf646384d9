// Package sizex formats and parses human-readable byte sizes.
package sizex

import (
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

var unitNames = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with base 1024 and at most two decimals, dropping
// trailing zeros: 0 -> "0 Bytes", 1536 -> "1.5 KB". Values past the TB range
// stay in TB. Negative values keep their sign.
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 Bytes"
	}

	sign := ""
	mag := float64(n)
	if n < 0 {
		sign = "-"
		mag = -mag
	}

	i := 0
	for mag >= 1024 && i < len(unitNames)-1 {
		mag /= 1024
		i++
	}

	s := strconv.FormatFloat(mag, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	return sign + s + " " + unitNames[i]
}

// Parse reads sizes such as "50MiB", "50m", "15GB" or "1024" using base 1024.
func Parse(s string) (int64, error) {
	return units.RAMInBytes(strings.TrimSpace(s))
}
