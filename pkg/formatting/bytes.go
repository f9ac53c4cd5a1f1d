// Package formatting converts byte sizes to and from human-readable strings.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

// units are base-1024, smallest first.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n with the largest unit that keeps the value at or above 1.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "1MB", "512 kb" or "2048". A bare number
// is a byte count. Units are case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	number, multiplier := s, int64(1)
	for i := len(units) - 1; i >= 0; i-- {
		if rest, ok := strings.CutSuffix(s, units[i]); ok {
			number = strings.TrimSpace(rest)
			multiplier = int64(1) << (10 * i)
			break
		}
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	return int64(value * float64(multiplier)), nil
}
