// Package api contains the request and response contracts of the HTTP API.
// Version v1 represents the current stable API version.
package api

// IndexQuery selects one recipe in one region.
type IndexQuery struct {
	Recipe string `json:"recipe" query:"recipe" validate:"required,notblank,max=200"`
	Region string `json:"region" query:"region" validate:"required,notblank,max=200"`
}

// ExportQuery selects what to export. An empty Recipe exports every recipe in the catalog.
type ExportQuery struct {
	Recipe string `json:"recipe" query:"recipe" validate:"omitempty,max=200"`
	Region string `json:"region" query:"region" validate:"required,notblank,max=200"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}

// ChartQuery selects the chart to render. Recipe-only charts ignore Region.
type ChartQuery struct {
	Recipe string `json:"recipe" query:"recipe" validate:"required,notblank,max=200"`
	Region string `json:"region" query:"region" validate:"omitempty,max=200"`
	Width  int    `json:"width" query:"width" validate:"omitempty,min=200,max=3000"`
	Height int    `json:"height" query:"height" validate:"omitempty,min=150,max=2000"`
}
