package domain

// RecipeIngredient is one line of a recipe.
type RecipeIngredient struct {
	Ingredient string  `json:"ingredient" yaml:"ingredient" validate:"required"`
	Quantity   float64 `json:"quantity" yaml:"quantity" validate:"gt=0"`
	Unit       string  `json:"unit" yaml:"unit"`
	Code       string  `json:"coicop" yaml:"coicop" validate:"required"`
}

// Recipe is a named, ordered list of ingredients.
type Recipe struct {
	Name        string             `json:"name" yaml:"name" validate:"required"`
	Ingredients []RecipeIngredient `json:"ingredients" yaml:"ingredients" validate:"required,min=1,dive"`
}

// TotalQuantity returns the sum of all ingredient quantities.
func (r Recipe) TotalQuantity() float64 {
	var total float64
	for _, ing := range r.Ingredients {
		total += ing.Quantity
	}
	return total
}

// Weights returns quantity / total quantity for each ingredient, in recipe order.
// Weights depend only on the recipe, never on which series are available.
// A recipe whose quantities sum to zero yields nil.
func (r Recipe) Weights() []float64 {
	total := r.TotalQuantity()
	if total == 0 {
		return nil
	}
	weights := make([]float64, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		weights[i] = ing.Quantity / total
	}
	return weights
}

// Proportion is one slice of the ingredient proportion chart.
type Proportion struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Share      float64 `json:"share"`
	Color      string  `json:"color"`
}
