package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"keksindex/internal/exporter"
	"keksindex/internal/infrastructure"
	"keksindex/pkg/contracts/domain"
)

// maxParallelRecipes bounds the concurrent aggregations of an all-recipes export.
const maxParallelRecipes = 4

// ExportService produces downloadable series files.
type ExportService struct {
	dashboard *DashboardService
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewExportService creates an export service on top of the dashboard service.
func NewExportService(dashboard *DashboardService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "export_service")),
	}
}

// Collect computes the series to export. A blank recipe selects every catalog recipe,
// computed concurrently and returned in catalog order.
func (s *ExportService) Collect(ctx context.Context, recipe, region string) ([]exporter.Series, error) {
	var selected []domain.Recipe
	if strings.TrimSpace(recipe) == "" {
		selected = s.dashboard.Recipes(ctx)
	} else {
		r, _, err := s.dashboard.Recipe(ctx, recipe)
		if err != nil {
			return nil, err
		}
		selected = []domain.Recipe{r}
	}

	out := make([]exporter.Series, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRecipes)
	for i, r := range selected {
		g.Go(func() error {
			_, result, err := s.dashboard.Compute(gctx, r.Name, region)
			if err != nil {
				return fmt.Errorf("recipe %s: %w", r.Name, err)
			}
			out[i] = exporter.Series{
				Recipe:      r,
				Region:      region,
				Ingredients: result.Ingredients,
				Composite:   result.Composite,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Export writes the selection to w in format.
func (s *ExportService) Export(ctx context.Context, w io.Writer, recipe, region string, format exporter.Format) error {
	series, err := s.Collect(ctx, recipe, region)
	if err != nil {
		return err
	}
	if err := exporter.Write(w, format, series); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}

	s.metrics.RecordExport(ctx, string(format))
	s.logger.InfoContext(ctx, "Export written",
		slog.String("format", string(format)),
		slog.String("region", region),
		slog.Int("recipes", len(series)))
	return nil
}
