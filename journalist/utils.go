package journalist

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	unicodeEscape = regexp.MustCompile(`\\u([0-9A-Fa-f]{4})`)
	strictPolicy  = bluemonday.StrictPolicy()
)

// parseDate parses a date string into a time.Time object in UTC
func parseDate(dateString string) (time.Time, error) {
	layouts := []string{
		time.RFC1123,
		time.RFC1123Z,
		time.RFC3339,
	}

	var parsedTime time.Time
	var err error

	for _, layout := range layouts {
		parsedTime, err = time.Parse(layout, dateString)
		if err == nil {
			break
		}
	}

	return parsedTime.UTC(), err
}

// cleanTitle removes markup and entities from a feed title.
func cleanTitle(s string) string {
	s = replaceUnicodeSymbols(s)
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// replaceUnicodeSymbols replaces Unicode escape sequences with their corresponding characters
func replaceUnicodeSymbols(s string) string {
	return unicodeEscape.ReplaceAllStringFunc(s, func(match string) string {
		num, err := strconv.ParseInt(match[2:], 16, 32)
		if err != nil {
			return match
		}
		return string(rune(num))
	})
}
