package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"keksindex/internal/charts"
	"keksindex/internal/dataprocessing"
	apierrors "keksindex/internal/errors"
	"keksindex/internal/exporter"
	"keksindex/internal/middleware"
	"keksindex/internal/recipes"
	"keksindex/internal/services"
	"keksindex/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Recipes(ctx context.Context) []domain.Recipe {
	args := m.Called()
	return args.Get(0).([]domain.Recipe)
}

func (m *MockDashboardService) Recipe(ctx context.Context, name string) (domain.Recipe, []domain.Proportion, error) {
	args := m.Called(name)
	props, _ := args.Get(1).([]domain.Proportion)
	return args.Get(0).(domain.Recipe), props, args.Error(2)
}

func (m *MockDashboardService) Regions(ctx context.Context) ([]string, error) {
	args := m.Called()
	regions, _ := args.Get(0).([]string)
	return regions, args.Error(1)
}

func (m *MockDashboardService) IngredientSeries(ctx context.Context, recipe, region string) ([]domain.IngredientPoint, error) {
	args := m.Called(recipe, region)
	series, _ := args.Get(0).([]domain.IngredientPoint)
	return series, args.Error(1)
}

func (m *MockDashboardService) CompositeIndex(ctx context.Context, recipe, region string) ([]domain.CompositePoint, *domain.Bounds, error) {
	args := m.Called(recipe, region)
	series, _ := args.Get(0).([]domain.CompositePoint)
	bounds, _ := args.Get(1).(*domain.Bounds)
	return series, bounds, args.Error(2)
}

func (m *MockDashboardService) Dashboard(ctx context.Context, recipe, region string) (*domain.Dashboard, error) {
	args := m.Called(recipe, region)
	d, _ := args.Get(0).(*domain.Dashboard)
	return d, args.Error(1)
}

// MockStoreService is a mock implementation of StoreServiceInterface
type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) Diagnostics(ctx context.Context) (domain.StoreDiagnostics, error) {
	args := m.Called()
	return args.Get(0).(domain.StoreDiagnostics), args.Error(1)
}

func (m *MockStoreService) Reload(ctx context.Context) (domain.StoreDiagnostics, error) {
	args := m.Called()
	return args.Get(0).(domain.StoreDiagnostics), args.Error(1)
}

// MockExportService is a mock implementation of ExportServiceInterface
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, w io.Writer, recipe, region string, format exporter.Format) error {
	args := m.Called(recipe, region, format)
	if body, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

// MockChartService is a mock implementation of ChartServiceInterface
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) Render(ctx context.Context, w io.Writer, kind charts.Kind, req services.ChartRequest) error {
	args := m.Called(kind, req)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	}
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestErrorHandler() *apierrors.ErrorHandler {
	return NewErrorHandler(testLogger(), false)
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

var muerbeteig = domain.Recipe{Name: "Mürbeteig", Ingredients: []domain.RecipeIngredient{
	{Ingredient: "Mehl", Quantity: 250, Unit: "g", Code: "CP01112"},
	{Ingredient: "Butter", Quantity: 70, Unit: "g", Code: "CP01151"},
}}

func TestRecipeHandler(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Recipes").Return([]domain.Recipe{muerbeteig})
	svc.On("Recipe", "Mürbeteig").Return(muerbeteig, []domain.Proportion{
		{Ingredient: "Mehl", Quantity: 250, Share: 0.78125},
		{Ingredient: "Butter", Quantity: 70, Share: 0.21875},
	}, nil)
	svc.On("Recipe", "Zimtsterne").Return(domain.Recipe{}, nil, recipes.ErrRecipeNotFound)

	router := NewRecipeHandler(svc, testLogger(), newTestErrorHandler()).Routes()

	t.Run("list", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recipes":[{"name":"Mürbeteig","ingredients":2}],"count":1}`, rec.Body.String())
	})

	t.Run("get", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/"+url.PathEscape("Mürbeteig"))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Mürbeteig", body["name"])
		assert.EqualValues(t, 320, body["total_quantity"])
		assert.Len(t, body["proportions"], 2)
	})

	t.Run("unknown recipe is 404", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/Zimtsterne")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeRecipeNotFound, decodeProblem(t, rec)["type"])
	})

	svc.AssertExpectations(t)
}

func TestIndexHandler(t *testing.T) {
	jan := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := new(MockDashboardService)
	svc.On("Regions").Return([]string{"Deutschland", "Österreich"}, nil)
	svc.On("IngredientSeries", "Mürbeteig", "Deutschland").Return([]domain.IngredientPoint{
		{Date: jan, Ingredient: "Mehl", Value: 100},
	}, nil)
	svc.On("CompositeIndex", "Mürbeteig", "Deutschland").Return([]domain.CompositePoint{
		{Date: jan, Value: 78.125},
	}, &domain.Bounds{Min: 78.125, Max: 100}, nil)
	svc.On("Dashboard", "Mürbeteig", "Atlantis").Return(&domain.Dashboard{
		Recipe:      "Mürbeteig",
		Region:      "Atlantis",
		Ingredients: []domain.IngredientPoint{},
		Composite:   []domain.CompositePoint{},
		Empty:       true,
		Notice:      services.EmptyNotice,
	}, nil)
	svc.On("Dashboard", "Zimtsterne", "Deutschland").Return(nil, recipes.ErrRecipeNotFound)

	errorHandler := newTestErrorHandler()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Mount("/", NewIndexHandler(svc, middleware.NewRequestValidator(testLogger()), testLogger(), errorHandler).Routes())

	q := func(path, recipe, region string) string {
		v := url.Values{}
		if recipe != "" {
			v.Set("recipe", recipe)
		}
		if region != "" {
			v.Set("region", region)
		}
		return path + "?" + v.Encode()
	}

	t.Run("regions", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/regions")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"regions":["Deutschland","Österreich"],"count":2}`, rec.Body.String())
	})

	t.Run("ingredient series", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, q("/index/ingredients", "Mürbeteig", "Deutschland"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recipe":"Mürbeteig","region":"Deutschland","count":1,
			"series":[{"date":"2020-01-01T00:00:00Z","ingredient":"Mehl","value":100}]}`, rec.Body.String())
	})

	t.Run("composite index", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, q("/index/composite", "Mürbeteig", "Deutschland"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recipe":"Mürbeteig","region":"Deutschland","count":1,
			"series":[{"date":"2020-01-01T00:00:00Z","value":78.125}],
			"bounds":{"min":78.125,"max":100}}`, rec.Body.String())
	})

	t.Run("unknown region is an empty dashboard", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, q("/dashboard", "Mürbeteig", "Atlantis"))
		require.Equal(t, http.StatusOK, rec.Code)

		var body domain.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Empty)
		assert.Equal(t, services.EmptyNotice, body.Notice)
		assert.Empty(t, body.Composite)
	})

	t.Run("unknown recipe is 404", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, q("/dashboard", "Zimtsterne", "Deutschland"))
		require.Equal(t, http.StatusNotFound, rec.Code)
		problem := decodeProblem(t, rec)
		assert.Equal(t, apierrors.TypeRecipeNotFound, problem["type"])
		assert.NotEmpty(t, problem["trace_id"])
	})

	t.Run("missing parameters are 400", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, q("/index/composite", "Mürbeteig", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		problem := decodeProblem(t, rec)
		assert.Equal(t, apierrors.TypeValidation, problem["type"])
		assert.Contains(t, fmt.Sprint(problem["errors"]), "region is required")

		rec = serve(t, router, http.MethodGet, "/dashboard?recipe=%20&region=Deutschland")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestIndexHandler_StoreUnavailable(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Regions").Return(nil, fmt.Errorf("%w: %w", services.ErrStoreUnavailable,
		fmt.Errorf("failed to build series store from x.csv: %w", dataprocessing.ErrNoValueColumn)))

	router := NewIndexHandler(svc, middleware.NewRequestValidator(testLogger()), testLogger(), newTestErrorHandler()).Routes()
	rec := serve(t, router, http.MethodGet, "/regions")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apierrors.TypeDataSchema, decodeProblem(t, rec)["type"])
}

func TestExportHandler(t *testing.T) {
	svc := new(MockExportService)
	svc.On("Export", "Mürbeteig", "Deutschland", exporter.FormatCSV).Return("recipe,region\n", nil)
	svc.On("Export", "", "Deutschland", exporter.FormatXLSX).Return("PK", nil)
	svc.On("Export", "Zimtsterne", "Deutschland", exporter.FormatCSV).Return(nil, recipes.ErrRecipeNotFound)

	router := NewExportHandler(svc, middleware.NewRequestValidator(testLogger()), testLogger(), newTestErrorHandler()).Routes()

	t.Run("csv", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/?recipe="+url.QueryEscape("Mürbeteig")+"&region=Deutschland")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exporter.FormatCSV.ContentType(), rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"),
			exporter.Filename("Deutschland", "Mürbeteig", exporter.FormatCSV))
		assert.Equal(t, "recipe,region\n", rec.Body.String())
	})

	t.Run("all recipes as xlsx", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/?region=Deutschland&format=xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exporter.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/?region=Deutschland&format=pdf")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/?recipe=Zimtsterne&region=Deutschland")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})

	svc.AssertExpectations(t)
}

func TestChartHandler(t *testing.T) {
	svc := new(MockChartService)
	svc.On("Render", charts.KindComposite, services.ChartRequest{
		Recipe: "Mürbeteig", Region: "Deutschland", Width: 640, Height: 480,
	}).Return(nil)
	svc.On("Render", charts.KindProportions, services.ChartRequest{Recipe: "Mürbeteig"}).Return(nil)

	router := NewChartHandler(svc, middleware.NewRequestValidator(testLogger()), testLogger(), newTestErrorHandler()).Routes()
	recipe := url.QueryEscape("Mürbeteig")

	rec := serve(t, router, http.MethodGet, "/composite.png?recipe="+recipe+"&region=Deutschland&width=640&height=480")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = serve(t, router, http.MethodGet, "/proportions.png?recipe="+recipe)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown kind", "/pie.png?recipe=" + recipe, http.StatusNotFound},
		{"region required for series", "/ingredients.png?recipe=" + recipe, http.StatusBadRequest},
		{"width not a number", "/composite.png?recipe=" + recipe + "&region=Deutschland&width=wide", http.StatusBadRequest},
		{"width too small", "/composite.png?recipe=" + recipe + "&region=Deutschland&width=10", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(t, router, http.MethodGet, tt.target).Code)
		})
	}

	svc.AssertExpectations(t)
}

func TestStoreHandler(t *testing.T) {
	diag := domain.StoreDiagnostics{Source: "memory", ValueColumn: "y", RowsRead: 6, RowsKept: 5, Regions: 2}
	svc := new(MockStoreService)
	svc.On("Diagnostics").Return(diag, nil)
	svc.On("Reload").Return(diag, nil).Once()
	svc.On("Reload").Return(domain.StoreDiagnostics{}, fmt.Errorf("%w: file vanished", services.ErrStoreUnavailable)).Once()

	router := NewStoreHandler(svc, testLogger(), newTestErrorHandler()).Routes()

	rec := serve(t, router, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.StoreDiagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.RowsKept)

	rec = serve(t, router, http.MethodPost, "/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"reloaded"`)

	rec = serve(t, router, http.MethodPost, "/reload")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apierrors.TypeDataUnavailable, decodeProblem(t, rec)["type"])

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, router, http.MethodGet, "/reload").Code)
	svc.AssertExpectations(t)
}

func TestMetricsHandler_Disabled(t *testing.T) {
	rec := serve(t, NewMetricsHandler(nil, newTestErrorHandler()), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	exp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# HELP up\n")
	})
	rec = serve(t, NewMetricsHandler(exp, newTestErrorHandler()), http.MethodGet, "/metrics")
	assert.Equal(t, "# HELP up\n", rec.Body.String())
}
