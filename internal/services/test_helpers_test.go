package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"keksindex/internal/dataprocessing"
	"keksindex/internal/infrastructure"
	"keksindex/internal/recipes"
	"keksindex/pkg/contracts/domain"
	"keksindex/pkg/contracts/events"
)

// MockBroadcaster is a mock for the Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastWithTrace(ctx context.Context, messageType events.MessageType, data interface{}) {
	m.Called(ctx, messageType, data)
}

// MockStoreProvider is a mock for the StoreProvider interface
type MockStoreProvider struct {
	mock.Mock
}

func (m *MockStoreProvider) Load(ctx context.Context) (*dataprocessing.SeriesStore, error) {
	args := m.Called(ctx)
	store, _ := args.Get(0).(*dataprocessing.SeriesStore)
	return store, args.Error(1)
}

func (m *MockStoreProvider) Current() (*dataprocessing.SeriesStore, bool) {
	args := m.Called()
	store, _ := args.Get(0).(*dataprocessing.SeriesStore)
	return store, args.Bool(1)
}

func (m *MockStoreProvider) Reload(ctx context.Context) (*dataprocessing.SeriesStore, error) {
	args := m.Called(ctx)
	store, _ := args.Get(0).(*dataprocessing.SeriesStore)
	return store, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRows holds Deutschland data for flour and butter and Österreich data for flour only.
func testRows() [][]string {
	return [][]string{
		{"date", "geo_label", "coicop", "y"},
		{"2020m01", "Deutschland", "CP01112", "100"},
		{"2020m01", "Deutschland", "CP01151", "110"},
		{"2020m02", "Deutschland", "CP01112", "102"},
		{"2020m02", "Deutschland", "CP01151", ":"},
		{"2020m01", "Österreich", "CP01112", "99"},
		{"2020m13", "Österreich", "CP01112", "99"},
	}
}

func testCatalog(t *testing.T) *recipes.Catalog {
	t.Helper()
	c, err := recipes.New(
		domain.Recipe{Name: "Mürbeteig", Ingredients: []domain.RecipeIngredient{
			{Ingredient: "Mehl", Quantity: 250, Unit: "g", Code: "CP01112"},
			{Ingredient: "Butter", Quantity: 70, Unit: "g", Code: "cp01151"},
		}},
		domain.Recipe{Name: "Nussecken", Ingredients: []domain.RecipeIngredient{
			{Ingredient: "Haselnüsse", Quantity: 200, Unit: "g", Code: "CP01163"},
		}},
	)
	require.NoError(t, err)
	return c
}

func testLoader() *dataprocessing.Loader {
	src := &dataprocessing.RecordsSource{Label: "memory", Rows: testRows()}
	return dataprocessing.NewLoader(src, nil, testLogger())
}

func testMetrics(t *testing.T) *infrastructure.BusinessMetrics {
	t.Helper()
	m, err := infrastructure.CreateBusinessMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return m
}
