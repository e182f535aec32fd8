// Package exporter writes recipe index results as CSV or XLSX.
//
// CSV output is a single long table with one row per point: ingredient points carry the
// ingredient name, recipe index points carry the kind "recipe_index". XLSX output splits
// the same data into three sheets (recipe lines, ingredient indices, recipe index) so a
// workbook can be charted without reshaping.
//
// Example usage:
//
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//	    return err
//	}
//	err = exporter.Write(w, format, []exporter.Series{series})
package exporter
