package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"keksindex/internal/charts"
	"keksindex/internal/dataprocessing"
	"keksindex/internal/infrastructure"
)

// ChartRequest selects a chart and its size.
type ChartRequest struct {
	Recipe string
	Region string
	Width  int
	Height int
}

// ChartService renders dashboard charts as PNG.
type ChartService struct {
	dashboard *DashboardService
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewChartService creates a chart service on top of the dashboard service.
func NewChartService(dashboard *DashboardService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartService{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "chart_service")),
	}
}

// Render writes the PNG of kind to w. The proportion chart needs no region.
func (s *ChartService) Render(ctx context.Context, w io.Writer, kind charts.Kind, req ChartRequest) error {
	opts := charts.Options{Width: req.Width, Height: req.Height}

	var err error
	switch kind {
	case charts.KindProportions:
		r, _, lookupErr := s.dashboard.Recipe(ctx, req.Recipe)
		if lookupErr != nil {
			return lookupErr
		}
		err = charts.Proportions(w, r, opts)

	case charts.KindIngredients, charts.KindComposite:
		r, result, computeErr := s.dashboard.Compute(ctx, req.Recipe, req.Region)
		if computeErr != nil {
			return computeErr
		}
		opts.Bounds = dataprocessing.SeriesBounds(result.Composite, result.Ingredients)
		if kind == charts.KindIngredients {
			err = charts.Ingredients(w, r, req.Region, result.Ingredients, opts)
		} else {
			err = charts.Composite(w, r.Name, req.Region, result.Composite, opts)
		}

	default:
		return fmt.Errorf("%w: %q", charts.ErrUnknownKind, kind)
	}
	if err != nil {
		return err
	}

	s.metrics.RecordChart(ctx, string(kind))
	s.logger.DebugContext(ctx, "Chart rendered",
		slog.String("kind", string(kind)),
		slog.String("recipe", req.Recipe),
		slog.String("region", req.Region))
	return nil
}
