package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var periodPattern = regexp.MustCompile(`^(\d{4})[mM](\d{1,2})$`)

// ParsePeriod converts a label such as "2020m3" or "2020M03" into the first day of that
// month. The result is midnight UTC so that dates compare equal regardless of the host
// time zone. Any label that does not match, or names month 0 or a month above 12,
// yields false.
func ParsePeriod(raw string) (time.Time, bool) {
	m := periodPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// FormatPeriod renders a date back into the canonical "YYYYmMM" label.
func FormatPeriod(t time.Time) string {
	return t.Format("2006") + "m" + t.Format("01")
}
