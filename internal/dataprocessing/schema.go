package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is returned when the source lacks a period, region or code column.
	ErrMissingColumn = errors.New("required column missing")
	// ErrNoValueColumn is returned when none of ValueColumnSynonyms is present.
	ErrNoValueColumn = errors.New("no value column found")
	// ErrEmptySource is returned when the source has no header row.
	ErrEmptySource = errors.New("source is empty")
)

// ValueColumnSynonyms lists the accepted names of the index value column in probe order.
var ValueColumnSynonyms = []string{"y", "value", "values", "midx", "hicp", "index"}

var (
	periodColumnNames = []string{"date", "period", "time_period"}
	regionColumnNames = []string{"geo_label"}
	codeColumnNames   = []string{"coicop"}
)

// Schema maps the canonical fields onto column positions of one source table.
type Schema struct {
	Period      int
	Region      int
	Code        int
	Value       int
	ValueColumn string
}

// ResolveSchema locates the required columns in a header row. Header names are compared
// after trimming and lowercasing. The first synonym from ValueColumnSynonyms that is
// present wins.
func ResolveSchema(header []string) (Schema, error) {
	if len(header) == 0 {
		return Schema{}, ErrEmptySource
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	lookup := func(names []string) (int, string, bool) {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i, n, true
			}
		}
		return -1, "", false
	}

	var s Schema
	var ok bool
	if s.Period, _, ok = lookup(periodColumnNames); !ok {
		return Schema{}, fmt.Errorf("%w: period (one of %s)", ErrMissingColumn, strings.Join(periodColumnNames, ", "))
	}
	if s.Region, _, ok = lookup(regionColumnNames); !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrMissingColumn, regionColumnNames[0])
	}
	if s.Code, _, ok = lookup(codeColumnNames); !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrMissingColumn, codeColumnNames[0])
	}
	if s.Value, s.ValueColumn, ok = lookup(ValueColumnSynonyms); !ok {
		return Schema{}, fmt.Errorf("%w: expected one of %s", ErrNoValueColumn, strings.Join(ValueColumnSynonyms, ", "))
	}

	return s, nil
}

// width is the minimum record length that holds every mapped column.
func (s Schema) width() int {
	w := s.Period
	for _, c := range []int{s.Region, s.Code, s.Value} {
		if c > w {
			w = c
		}
	}
	return w + 1
}
