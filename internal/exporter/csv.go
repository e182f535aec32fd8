package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"keksindex/pkg/contracts/domain"
)

// KindRecipeIndex marks recipe index rows in the long CSV layout.
const KindRecipeIndex = "recipe_index"

// CSVHeaders is the header row of the long CSV layout.
var CSVHeaders = []string{"recipe", "region", "date", "kind", "ingredient", "value"}

// Series bundles one recipe's results in one region.
type Series struct {
	Recipe      domain.Recipe
	Region      string
	Ingredients []domain.IngredientPoint
	Composite   []domain.CompositePoint
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSeriesCSV writes all series in the long layout, ingredient rows before the
// recipe index rows of each series.
func WriteSeriesCSV(w io.Writer, series []Series) error {
	return WriteCSV(w, WriteOptions{
		Headers:   CSVHeaders,
		Records:   seriesRecords(series),
		BOMPrefix: true,
	})
}

func seriesRecords(series []Series) [][]string {
	var records [][]string
	for _, s := range series {
		for _, p := range s.Ingredients {
			records = append(records, []string{
				s.Recipe.Name, s.Region, formatMonth(p.Date), "ingredient", p.Ingredient, formatFloat(p.Value),
			})
		}
		for _, p := range s.Composite {
			records = append(records, []string{
				s.Recipe.Name, s.Region, formatMonth(p.Date), KindRecipeIndex, "", formatFloat(p.Value),
			})
		}
	}
	return records
}

// Write dispatches to the writer of format f.
func Write(w io.Writer, f Format, series []Series) error {
	switch f {
	case FormatCSV:
		return WriteSeriesCSV(w, series)
	case FormatXLSX:
		return WriteSeriesXLSX(w, series)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteFile writes series to path, creating parent directories as needed.
// Logging is left to the caller.
func WriteFile(path string, f Format, series []Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, f, series); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
