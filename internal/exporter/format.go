package exporter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for export formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx in any case. An empty string selects csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Filename builds a download name such as keksindex_deutschland_zimtsterne.csv.
// An empty recipe means every recipe of the catalog.
func Filename(region, recipe string, f Format) string {
	parts := []string{"keksindex"}
	for _, p := range []string{region, recipe} {
		if slug := slugify(p); slug != "" {
			parts = append(parts, slug)
		}
	}
	if recipe == "" {
		parts = append(parts, "alle")
	}
	return strings.Join(parts, "_") + "." + string(f)
}

func slugify(s string) string {
	r := strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "Ä", "Ae", "Ö", "Oe", "Ü", "Ue", "ß", "ss")
	s = unsafeName.ReplaceAllString(r.Replace(s), "-")
	return strings.ToLower(strings.Trim(s, "-"))
}

// formatFloat formats an index value with four decimals, enough for 2015=100 indices
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// formatMonth formats an observation date as YYYY-MM
func formatMonth(t time.Time) string {
	return t.Format("2006-01")
}
