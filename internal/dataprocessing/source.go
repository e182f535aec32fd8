package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// Source yields the raw table, header row first.
type Source interface {
	Name() string
	Records(ctx context.Context) ([][]string, error)
}

// CSVSource reads a delimited text file.
type CSVSource struct {
	Path  string
	Comma rune
}

// NewCSVSource returns a comma separated source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Comma: ','}
}

// Name implements Source.
func (s *CSVSource) Name() string { return s.Path }

// Records implements Source.
func (s *CSVSource) Records(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f, s.Comma)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return records, nil
}

// ReadCSV reads all records from r. Rows may have differing lengths.
func ReadCSV(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	if comma != 0 {
		reader.Comma = comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// XLSXSource reads one worksheet of an Excel workbook.
type XLSXSource struct {
	Path string
	// Sheet defaults to the first worksheet when empty.
	Sheet string
}

// Name implements Source.
func (s *XLSXSource) Name() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + "#" + s.Sheet
}

// Records implements Source.
func (s *XLSXSource) Records(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// RecordsSource serves an in-memory table. Useful for tests and for callers that have
// already parsed the file.
type RecordsSource struct {
	Label string
	Rows  [][]string
}

// Name implements Source.
func (s *RecordsSource) Name() string { return s.Label }

// Records implements Source.
func (s *RecordsSource) Records(ctx context.Context) ([][]string, error) {
	return s.Rows, ctx.Err()
}

// NewSource returns the reader for format, which is "csv" or "xlsx".
func NewSource(path, format, sheet string, comma rune) (Source, error) {
	switch format {
	case "csv":
		return &CSVSource{Path: path, Comma: comma}, nil
	case "xlsx":
		return &XLSXSource{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported source format: %q", format)
	}
}
