package recipes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keksindex/pkg/contracts/domain"
)

func TestColorMapFirstAppearance(t *testing.T) {
	r, err := Default().Get("Lebkuchen")
	require.NoError(t, err)

	colors := ColorMap(r)
	assert.Equal(t, "#e63946", colors["Mehl"])
	assert.Equal(t, "#2a9d8f", colors["Honig"])
	assert.Equal(t, "#e76f51", colors["Gewürze"])
	assert.Len(t, colors, 6)
}

func TestColorMapWrapsAndDeduplicates(t *testing.T) {
	var r domain.Recipe
	for i := 0; i < len(Palette)+2; i++ {
		r.Ingredients = append(r.Ingredients, domain.RecipeIngredient{Ingredient: fmt.Sprintf("i%d", i), Quantity: 1})
	}
	r.Ingredients = append(r.Ingredients, domain.RecipeIngredient{Ingredient: "i1", Quantity: 1})

	colors := ColorMap(r)
	assert.Len(t, colors, len(Palette)+2)
	assert.Equal(t, Palette[0], colors[fmt.Sprintf("i%d", len(Palette))])
	assert.Equal(t, Palette[1], colors["i1"])
}

func TestProportions(t *testing.T) {
	r := domain.Recipe{Name: "t", Ingredients: []domain.RecipeIngredient{
		{Ingredient: "Flour", Quantity: 250, Unit: "g", Code: "CP01112"},
		{Ingredient: "Sugar", Quantity: 70, Unit: "g", Code: "CP01181"},
	}}

	p := Proportions(r)
	require.Len(t, p, 2)
	assert.InDelta(t, 250.0/320, p[0].Share, 1e-12)
	assert.InDelta(t, 70.0/320, p[1].Share, 1e-12)
	assert.Equal(t, "g", p[1].Unit)
	assert.Equal(t, Palette[1], p[1].Color)
}
