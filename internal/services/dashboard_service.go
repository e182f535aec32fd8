package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"keksindex/internal/dataprocessing"
	"keksindex/internal/infrastructure"
	"keksindex/internal/recipes"
	"keksindex/pkg/contracts/domain"
)

// EmptyNotice is shown instead of the charts when a recipe has no data in a region.
const EmptyNotice = "Keine passende Zeitreihe für dieses Rezept und Land gefunden."

// SourceCaption names the data source under every chart.
const SourceCaption = "Eurostat PRC_HICP_MIDX (COICOP 5-stellige Preisindizes, 2015 = 100)"

// Reasons an aggregation came back empty, used as log field and metric label.
const (
	EmptyUnknownRegion = "unknown_region"
	EmptyNoCodeOverlap = "no_code_overlap"
	EmptyNoNumeric     = "no_numeric_values"
)

// DashboardService answers recipe and index queries.
type DashboardService struct {
	catalog *recipes.Catalog
	store   StoreProvider
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(catalog *recipes.Catalog, store StoreProvider, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		catalog: catalog,
		store:   store,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// Recipes returns the catalog in its configured order.
func (s *DashboardService) Recipes(ctx context.Context) []domain.Recipe {
	return s.catalog.Recipes()
}

// Recipe returns one recipe and its proportion breakdown.
func (s *DashboardService) Recipe(ctx context.Context, name string) (domain.Recipe, []domain.Proportion, error) {
	r, err := s.catalog.Get(name)
	if err != nil {
		return domain.Recipe{}, nil, err
	}
	return r, recipes.Proportions(r), nil
}

// Regions returns the distinct sorted region labels of the store.
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	store, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return store.Regions(), nil
}

// Compute aggregates one recipe in one region. Unknown recipes fail with
// recipes.ErrRecipeNotFound; unknown regions produce an empty result.
func (s *DashboardService) Compute(ctx context.Context, recipeName, region string) (domain.Recipe, dataprocessing.Result, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.compute", trace.WithAttributes(
		attribute.String("recipe", recipeName),
		attribute.String("region", region),
	))
	defer span.End()

	r, err := s.catalog.Get(recipeName)
	if err != nil {
		return domain.Recipe{}, dataprocessing.Result{}, err
	}

	store, err := s.load(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.Recipe{}, dataprocessing.Result{}, err
	}

	result := dataprocessing.NewAggregator(store).Compute(r, region)
	cause := emptyCause(result)
	span.SetAttributes(
		attribute.Int("matched_rows", result.Stats.MatchedRows),
		attribute.Int("points", len(result.Composite)),
	)

	if cause != "" {
		s.logger.InfoContext(ctx, "Aggregation produced no data",
			slog.String("recipe", r.Name),
			slog.String("region", region),
			slog.String("reason", cause),
			slog.Int("region_rows", result.Stats.RegionRows),
			slog.Int("matched_rows", result.Stats.MatchedRows),
			slog.Int("dropped_non_numeric", result.Stats.DroppedNonNumeric))
	} else if result.Stats.DroppedNonNumeric > 0 || result.Stats.MatchedIngredients < len(r.Ingredients) {
		s.logger.DebugContext(ctx, "Aggregation is partial",
			slog.String("recipe", r.Name),
			slog.String("region", region),
			slog.Int("matched_ingredients", result.Stats.MatchedIngredients),
			slog.Int("recipe_lines", len(r.Ingredients)),
			slog.Int("dropped_non_numeric", result.Stats.DroppedNonNumeric))
	}
	s.metrics.RecordIndexQuery(ctx, "compute", result.Stats.DroppedNonNumeric, cause)

	return r, result, nil
}

// IngredientSeries returns the per-ingredient series of a recipe in a region.
func (s *DashboardService) IngredientSeries(ctx context.Context, recipeName, region string) ([]domain.IngredientPoint, error) {
	_, result, err := s.Compute(ctx, recipeName, region)
	if err != nil {
		return nil, err
	}
	return result.Ingredients, nil
}

// CompositeIndex returns the weighted recipe index and its y bounds.
func (s *DashboardService) CompositeIndex(ctx context.Context, recipeName, region string) ([]domain.CompositePoint, *domain.Bounds, error) {
	_, result, err := s.Compute(ctx, recipeName, region)
	if err != nil {
		return nil, nil, err
	}
	return result.Composite, dataprocessing.SeriesBounds(result.Composite, result.Ingredients), nil
}

// Dashboard assembles everything the dashboard page shows for one selection.
func (s *DashboardService) Dashboard(ctx context.Context, recipeName, region string) (*domain.Dashboard, error) {
	r, result, err := s.Compute(ctx, recipeName, region)
	if err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		Recipe:      r.Name,
		Region:      region,
		Proportions: recipes.Proportions(r),
		Ingredients: result.Ingredients,
		Composite:   result.Composite,
		Bounds:      dataprocessing.SeriesBounds(result.Composite, result.Ingredients),
		Empty:       result.Empty(),
		Source:      SourceCaption,
	}
	if d.Empty {
		d.Notice = EmptyNotice
	}
	return d, nil
}

func (s *DashboardService) load(ctx context.Context) (*dataprocessing.SeriesStore, error) {
	store, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Series store unavailable", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return store, nil
}

func emptyCause(r dataprocessing.Result) string {
	switch {
	case !r.Empty():
		return ""
	case !r.Stats.RegionFound:
		return EmptyUnknownRegion
	case r.Stats.MatchedRows == 0:
		return EmptyNoCodeOverlap
	default:
		return EmptyNoNumeric
	}
}
