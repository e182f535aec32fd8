package domain

import (
	"math"
	"time"
)

// Observation is one cleaned row of the HICP series table.
type Observation struct {
	Region string    `json:"region"`
	Code   string    `json:"coicop"`
	Date   time.Time `json:"date"`
	// Value is NaN when the source cell was empty or not numeric.
	Value float64 `json:"value"`
}

// HasValue reports whether the observation carries a numeric index value.
func (o Observation) HasValue() bool {
	return !math.IsNaN(o.Value) && !math.IsInf(o.Value, 0)
}
