package http

import (
	"context"
	"io"

	"keksindex/internal/charts"
	"keksindex/internal/exporter"
	"keksindex/internal/services"
	"keksindex/pkg/contracts/domain"
)

// DashboardServiceInterface answers recipe and index queries
type DashboardServiceInterface interface {
	Recipes(ctx context.Context) []domain.Recipe
	Recipe(ctx context.Context, name string) (domain.Recipe, []domain.Proportion, error)
	Regions(ctx context.Context) ([]string, error)
	IngredientSeries(ctx context.Context, recipe, region string) ([]domain.IngredientPoint, error)
	CompositeIndex(ctx context.Context, recipe, region string) ([]domain.CompositePoint, *domain.Bounds, error)
	Dashboard(ctx context.Context, recipe, region string) (*domain.Dashboard, error)
}

// StoreServiceInterface exposes the series store lifecycle
type StoreServiceInterface interface {
	Diagnostics(ctx context.Context) (domain.StoreDiagnostics, error)
	Reload(ctx context.Context) (domain.StoreDiagnostics, error)
}

// ExportServiceInterface writes downloadable series files
type ExportServiceInterface interface {
	Export(ctx context.Context, w io.Writer, recipe, region string, format exporter.Format) error
}

// ChartServiceInterface renders PNG charts
type ChartServiceInterface interface {
	Render(ctx context.Context, w io.Writer, kind charts.Kind, req services.ChartRequest) error
}

var (
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ StoreServiceInterface     = (*services.StoreService)(nil)
	_ ExportServiceInterface    = (*services.ExportService)(nil)
	_ ChartServiceInterface     = (*services.ChartService)(nil)
)
