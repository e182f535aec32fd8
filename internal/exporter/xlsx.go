package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"keksindex/internal/dataprocessing"
	"keksindex/internal/recipes"
)

// Sheet names of the XLSX workbook.
const (
	SheetRecipes     = "Rezepte"
	SheetIngredients = "Zutatenindizes"
	SheetComposite   = "Rezeptindex"
)

// WriteSeriesXLSX writes a workbook with one sheet of recipe lines, one of ingredient
// indices and one of recipe index values.
func WriteSeriesXLSX(w io.Writer, series []Series) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRecipes); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetIngredients, SheetComposite} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{recipes.CompositeColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	recipeRows := [][]interface{}{{"recipe", "ingredient", "quantity", "unit", "coicop", "share"}}
	ingredientRows := [][]interface{}{{"recipe", "region", "date", "ingredient", "value"}}
	compositeRows := [][]interface{}{{"recipe", "region", "date", "value"}}

	seen := make(map[string]bool)
	for _, s := range series {
		if !seen[s.Recipe.Name] {
			seen[s.Recipe.Name] = true
			for i, p := range recipes.Proportions(s.Recipe) {
				code := dataprocessing.NormalizeCode(s.Recipe.Ingredients[i].Code)
				recipeRows = append(recipeRows, []interface{}{
					s.Recipe.Name, p.Ingredient, p.Quantity, p.Unit, code, p.Share,
				})
			}
		}
		for _, p := range s.Ingredients {
			ingredientRows = append(ingredientRows, []interface{}{
				s.Recipe.Name, s.Region, formatMonth(p.Date), p.Ingredient, p.Value,
			})
		}
		for _, p := range s.Composite {
			compositeRows = append(compositeRows, []interface{}{
				s.Recipe.Name, s.Region, formatMonth(p.Date), p.Value,
			})
		}
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetRecipes:     recipeRows,
		SheetIngredients: ingredientRows,
		SheetComposite:   compositeRows,
	} {
		if err := writeRows(f, sheet, rows, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
