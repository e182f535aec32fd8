package dataprocessing

import (
	"math"
	"sort"
	"time"

	"keksindex/pkg/contracts/domain"
)

// QueryStats describes how a single aggregation went. An empty result with RegionFound
// false means the region is unknown; with MatchedRows 0 it means no code overlap.
type QueryStats struct {
	RegionFound       bool `json:"region_found"`
	RegionRows        int  `json:"region_rows"`
	MatchedRows       int  `json:"matched_rows"`
	DroppedNonNumeric int  `json:"dropped_non_numeric"`
	// MatchedIngredients counts recipe lines that found at least one numeric observation.
	MatchedIngredients int `json:"matched_ingredients"`
}

// Result holds both outputs of one recipe/region aggregation.
type Result struct {
	Ingredients []domain.IngredientPoint
	Composite   []domain.CompositePoint
	Stats       QueryStats
}

// Empty reports whether neither series has any point.
func (r Result) Empty() bool {
	return len(r.Ingredients) == 0 && len(r.Composite) == 0
}

// Aggregator joins recipes against a SeriesStore. It holds no mutable state.
type Aggregator struct {
	store *SeriesStore
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store *SeriesStore) *Aggregator {
	return &Aggregator{store: store}
}

// match is one observation joined to one recipe line.
type match struct {
	obs  domain.Observation
	line int
}

// join filters the store to region and inner-joins it with the recipe on the normalized
// code. Every match is kept; an observation whose code appears on two recipe lines
// yields two matches. Non-numeric observations are dropped and counted.
func (a *Aggregator) join(recipe domain.Recipe, region string) ([]match, QueryStats) {
	var stats QueryStats
	if a.store == nil {
		return nil, stats
	}

	rows := a.store.Region(region)
	stats.RegionFound = rows != nil
	stats.RegionRows = len(rows)
	if len(rows) == 0 {
		return nil, stats
	}

	lines := make(map[string][]int, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		code := NormalizeCode(ing.Code)
		lines[code] = append(lines[code], i)
	}

	hit := make([]bool, len(recipe.Ingredients))
	var out []match
	for _, obs := range rows {
		idx, ok := lines[obs.Code]
		if !ok {
			continue
		}
		if !obs.HasValue() {
			stats.DroppedNonNumeric += len(idx)
			continue
		}
		for _, i := range idx {
			out = append(out, match{obs: obs, line: i})
			hit[i] = true
		}
	}

	stats.MatchedRows = len(out)
	for _, h := range hit {
		if h {
			stats.MatchedIngredients++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].obs.Date.Before(out[j].obs.Date)
	})
	return out, stats
}

// IngredientSeries returns one (date, ingredient, value) row per matched observation,
// sorted by date. It never fails: an unknown region or no code overlap gives an empty
// slice.
func (a *Aggregator) IngredientSeries(recipe domain.Recipe, region string) []domain.IngredientPoint {
	matches, _ := a.join(recipe, region)
	return ingredientPoints(recipe, matches)
}

// CompositeIndex returns the quantity-weighted recipe index per date, sorted by date.
//
// Weights are quantity / total quantity of the whole recipe and are not rescaled when
// some ingredients have no data for a date. Such dates are under-weighted: with only
// flour (250 of 320) at 100, the composite is 78.125, not 100.
func (a *Aggregator) CompositeIndex(recipe domain.Recipe, region string) []domain.CompositePoint {
	matches, _ := a.join(recipe, region)
	return compositePoints(recipe, matches)
}

// Compute runs the join once and derives both series plus the query counters.
func (a *Aggregator) Compute(recipe domain.Recipe, region string) Result {
	matches, stats := a.join(recipe, region)
	return Result{
		Ingredients: ingredientPoints(recipe, matches),
		Composite:   compositePoints(recipe, matches),
		Stats:       stats,
	}
}

func ingredientPoints(recipe domain.Recipe, matches []match) []domain.IngredientPoint {
	out := make([]domain.IngredientPoint, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.IngredientPoint{
			Date:       m.obs.Date,
			Ingredient: recipe.Ingredients[m.line].Ingredient,
			Value:      m.obs.Value,
		})
	}
	return out
}

func compositePoints(recipe domain.Recipe, matches []match) []domain.CompositePoint {
	weights := recipe.Weights()
	if weights == nil || len(matches) == 0 {
		return []domain.CompositePoint{}
	}

	// matches are date sorted, so equal dates are adjacent.
	out := make([]domain.CompositePoint, 0)
	var current time.Time
	for i, m := range matches {
		weighted := m.obs.Value * weights[m.line]
		if i == 0 || !m.obs.Date.Equal(current) {
			current = m.obs.Date
			out = append(out, domain.CompositePoint{Date: current, Value: weighted})
			continue
		}
		out[len(out)-1].Value += weighted
	}
	return out
}

// SeriesBounds returns the combined value range of the composite and ingredient series,
// or nil when both are empty.
func SeriesBounds(composite []domain.CompositePoint, ingredients []domain.IngredientPoint) *domain.Bounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range composite {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	for _, p := range ingredients {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if math.IsInf(lo, 1) {
		return nil
	}
	return &domain.Bounds{Min: lo, Max: hi}
}
