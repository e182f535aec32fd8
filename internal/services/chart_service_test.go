package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keksindex/internal/charts"
	"keksindex/internal/recipes"
)

func TestChartService_Render(t *testing.T) {
	tests := []struct {
		name   string
		kind   charts.Kind
		region string
	}{
		{name: "proportions without region", kind: charts.KindProportions},
		{name: "ingredients", kind: charts.KindIngredients, region: "Deutschland"},
		{name: "composite", kind: charts.KindComposite, region: "Deutschland"},
		{name: "composite without data", kind: charts.KindComposite, region: "Atlantis"},
	}

	svc := NewChartService(newTestDashboard(t), testMetrics(t), testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := svc.Render(context.Background(), &buf, tt.kind, ChartRequest{
				Recipe: "Mürbeteig",
				Region: tt.region,
				Width:  400,
				Height: 300,
			})
			require.NoError(t, err)

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 400, img.Bounds().Dx())
			assert.Equal(t, 300, img.Bounds().Dy())
		})
	}
}

func TestChartService_RenderErrors(t *testing.T) {
	svc := NewChartService(newTestDashboard(t), nil, testLogger())

	var buf bytes.Buffer
	err := svc.Render(context.Background(), &buf, charts.Kind("pie"), ChartRequest{Recipe: "Mürbeteig"})
	assert.ErrorIs(t, err, charts.ErrUnknownKind)

	err = svc.Render(context.Background(), &buf, charts.KindProportions, ChartRequest{Recipe: "Zimtsterne"})
	assert.ErrorIs(t, err, recipes.ErrRecipeNotFound)
	assert.Zero(t, buf.Len())
}
