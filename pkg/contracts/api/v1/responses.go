package api

import (
	"keksindex/pkg/contracts/domain"
)

// RecipeSummary is one entry of the recipe listing.
type RecipeSummary struct {
	Name        string `json:"name"`
	Ingredients int    `json:"ingredients"`
}

// RecipeListResponse lists the catalog.
type RecipeListResponse struct {
	Recipes []RecipeSummary `json:"recipes"`
	Count   int             `json:"count"`
}

// RecipeResponse is one recipe with its proportion breakdown.
type RecipeResponse struct {
	domain.Recipe
	TotalQuantity float64             `json:"total_quantity"`
	Proportions   []domain.Proportion `json:"proportions"`
}

// RegionListResponse lists the regions present in the store.
type RegionListResponse struct {
	Regions []string `json:"regions"`
	Count   int      `json:"count"`
}

// IngredientSeriesResponse is the per-ingredient series of a recipe in a region.
type IngredientSeriesResponse struct {
	Recipe string                   `json:"recipe"`
	Region string                   `json:"region"`
	Series []domain.IngredientPoint `json:"series"`
	Count  int                      `json:"count"`
}

// CompositeIndexResponse is the weighted recipe index of a recipe in a region.
type CompositeIndexResponse struct {
	Recipe string                  `json:"recipe"`
	Region string                  `json:"region"`
	Series []domain.CompositePoint `json:"series"`
	Count  int                     `json:"count"`
	Bounds *domain.Bounds          `json:"bounds,omitempty"`
}

// ReloadResponse reports a completed store rebuild.
type ReloadResponse struct {
	Status      string                  `json:"status"`
	Diagnostics domain.StoreDiagnostics `json:"diagnostics"`
}
