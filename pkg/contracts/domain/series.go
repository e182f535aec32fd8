package domain

import "time"

// IngredientPoint is one (date, ingredient, value) row of an ingredient index series.
type IngredientPoint struct {
	Date       time.Time `json:"date"`
	Ingredient string    `json:"ingredient"`
	Value      float64   `json:"value"`
}

// CompositePoint is one (date, value) row of the weighted recipe index.
type CompositePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Bounds is the combined value range of a set of series.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Dashboard bundles everything needed to render one recipe/region selection.
type Dashboard struct {
	Recipe      string            `json:"recipe"`
	Region      string            `json:"region"`
	Proportions []Proportion      `json:"proportions"`
	Ingredients []IngredientPoint `json:"ingredient_series"`
	Composite   []CompositePoint  `json:"composite_index"`
	Bounds      *Bounds           `json:"bounds,omitempty"`
	Empty       bool              `json:"empty"`
	Notice      string            `json:"notice,omitempty"`
	Source      string            `json:"source"`
}

// StoreDiagnostics reports what happened while building the series store.
type StoreDiagnostics struct {
	Source           string    `json:"source"`
	ValueColumn      string    `json:"value_column"`
	RowsRead         int       `json:"rows_read"`
	RowsKept         int       `json:"rows_kept"`
	DroppedPeriod    int       `json:"dropped_period"`
	NonNumericValues int       `json:"non_numeric_values"`
	Regions          int       `json:"regions"`
	Codes            int       `json:"codes"`
	LoadedAt         time.Time `json:"loaded_at"`
	DurationSeconds  float64   `json:"duration_seconds"`
}
