package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nonNumeric matches everything that is not part of a plain decimal number.
var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

// Day-first layouts are tried before the month-first fallback.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"2 Jan 06",
	"2-Jan-06",
	"2 January 2006",
	"2006-01-02",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
	"1/2/2006",
}

// stripArtifacts removes the ="..." wrapping spreadsheet exports put around dates and numbers.
func stripArtifacts(s string) string {
	s = strings.ReplaceAll(s, `="`, "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.TrimPrefix(strings.TrimSpace(s), "=")
	return strings.TrimSpace(s)
}

// parseDate returns the calendar date in s, or false when no layout matches.
// 01/01/0001 is the zero time.Time and is rejected like any unparseable date.
func parseDate(s string) (time.Time, bool) {
	s = stripArtifacts(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return day, !day.IsZero()
		}
	}
	return time.Time{}, false
}

// isMissing reports the blank and null sentinels that count as a zero amount.
func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "nan", "None":
		return true
	}
	return false
}

// parseAmount converts a monetary cell such as "1,234.50" or `="500.00"` to a float.
func parseAmount(s string) (float64, error) {
	if isMissing(stripArtifacts(s)) {
		return 0, nil
	}
	return strconv.ParseFloat(nonNumeric.ReplaceAllString(s, ""), 64)
}
