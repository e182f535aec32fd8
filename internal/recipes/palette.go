package recipes

import "keksindex/pkg/contracts/domain"

// Palette is the ingredient colour cycle shared by every chart.
var Palette = []string{
	"#e63946", "#2a9d8f", "#f4a261", "#264653",
	"#e76f51", "#06aed5", "#8338ec", "#ffbe0b",
	"#fb5607", "#3a86ff", "#ff006e", "#06ffa5",
	"#774936", "#c9184a", "#52b788", "#ffd60a",
}

// CompositeColor is the line colour of the weighted recipe index.
const CompositeColor = "#c41e3a"

// ColorMap assigns palette colours to ingredient names by first appearance in the recipe,
// wrapping around the palette. The same map is used for the proportion and line charts
// so an ingredient keeps its colour across both.
func ColorMap(r domain.Recipe) map[string]string {
	colors := make(map[string]string, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if _, ok := colors[ing.Ingredient]; ok {
			continue
		}
		colors[ing.Ingredient] = Palette[len(colors)%len(Palette)]
	}
	return colors
}

// Proportions returns one slice per recipe line with its share of the total quantity.
func Proportions(r domain.Recipe) []domain.Proportion {
	colors := ColorMap(r)
	weights := r.Weights()
	out := make([]domain.Proportion, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		out[i] = domain.Proportion{
			Ingredient: ing.Ingredient,
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
			Color:      colors[ing.Ingredient],
		}
		if weights != nil {
			out[i].Share = weights[i]
		}
	}
	return out
}
