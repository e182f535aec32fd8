package dataprocessing

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"keksindex/pkg/contracts/domain"
)

// SeriesStore is the cleaned HICP table, sorted by (region, code, date).
// It is immutable once built.
type SeriesStore struct {
	rows    []domain.Observation
	regions map[string]span
	labels  []string
	codes   []string
	diag    domain.StoreDiagnostics
}

// span is a half-open range of rows belonging to one region.
type span struct{ start, end int }

// BuildStore resolves the schema of records (header first), parses every row and returns
// the sorted store. Rows whose period does not parse are dropped and counted. Cells that
// are not numeric are kept as NaN, counted, and skipped by the Aggregator.
func BuildStore(source string, records [][]string) (*SeriesStore, error) {
	started := time.Now()
	if len(records) == 0 {
		return nil, ErrEmptySource
	}

	schema, err := ResolveSchema(records[0])
	if err != nil {
		return nil, err
	}

	diag := domain.StoreDiagnostics{
		Source:      source,
		ValueColumn: schema.ValueColumn,
	}

	width := schema.width()
	rows := make([]domain.Observation, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		diag.RowsRead++

		if len(rec) < width {
			rec = pad(rec, width)
		}

		date, ok := ParsePeriod(rec[schema.Period])
		if !ok {
			diag.DroppedPeriod++
			continue
		}

		value, ok := parseValue(rec[schema.Value])
		if !ok {
			diag.NonNumericValues++
		}

		rows = append(rows, domain.Observation{
			Region: NormalizeLabel(rec[schema.Region]),
			Code:   NormalizeCode(rec[schema.Code]),
			Date:   date,
			Value:  value,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Date.Before(b.Date)
	})

	s := &SeriesStore{
		rows:    rows,
		regions: make(map[string]span),
	}

	codes := make(map[string]struct{})
	for i, row := range rows {
		sp, ok := s.regions[row.Region]
		if !ok {
			sp = span{start: i}
			s.labels = append(s.labels, row.Region)
		}
		sp.end = i + 1
		s.regions[row.Region] = sp
		codes[row.Code] = struct{}{}
	}
	for c := range codes {
		s.codes = append(s.codes, c)
	}
	sort.Strings(s.codes)

	diag.RowsKept = len(rows)
	diag.Regions = len(s.labels)
	diag.Codes = len(s.codes)
	diag.LoadedAt = time.Now().UTC()
	diag.DurationSeconds = time.Since(started).Seconds()
	s.diag = diag

	return s, nil
}

// Len returns the number of stored observations.
func (s *SeriesStore) Len() int { return len(s.rows) }

// Regions returns the distinct region labels in ascending order.
func (s *SeriesStore) Regions() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// HasRegion reports whether any observation carries the given label. The query is
// cleaned with NormalizeLabel like the stored labels; after that the match is exact.
func (s *SeriesStore) HasRegion(region string) bool {
	_, ok := s.regions[NormalizeLabel(region)]
	return ok
}

// Codes returns the distinct normalized COICOP codes in ascending order.
func (s *SeriesStore) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Region returns the observations of one region in (code, date) order, matching
// the label the same way as HasRegion. The returned
// slice aliases the store and must not be modified.
func (s *SeriesStore) Region(region string) []domain.Observation {
	sp, ok := s.regions[NormalizeLabel(region)]
	if !ok {
		return nil
	}
	return s.rows[sp.start:sp.end:sp.end]
}

// Observations returns a copy of every stored row.
func (s *SeriesStore) Observations() []domain.Observation {
	out := make([]domain.Observation, len(s.rows))
	copy(out, s.rows)
	return out
}

// Diagnostics returns the counters collected while building the store.
func (s *SeriesStore) Diagnostics() domain.StoreDiagnostics { return s.diag }

func parseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func pad(rec []string, width int) []string {
	out := make([]string, width)
	copy(out, rec)
	return out
}
