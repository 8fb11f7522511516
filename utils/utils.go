package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses a "HH:MM" wall clock time.
func ParseClock(s string) (hour, minute uint, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	h, _ := strconv.ParseUint(m[1], 10, 8)
	mm, _ := strconv.ParseUint(m[2], 10, 8)
	return uint(h), uint(mm), nil
}

// FormatNumber prints v with the shortest decimal representation that round-trips
// (e.g. 67000 -> "67000", 2.45 -> "2.45").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StrValueToFloat parses a decimal string, accepting both "." and "," as separator.
func StrValueToFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing decimal %q: %w", value, err)
	}
	return v, nil
}
