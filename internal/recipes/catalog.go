package recipes

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"keksindex/internal/dataprocessing"
	"keksindex/pkg/contracts/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrRecipeNotFound is returned by Get for unknown names.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrEmptyCatalog is returned when a catalog defines no recipes.
	ErrEmptyCatalog = errors.New("catalog has no recipes")
	// ErrZeroQuantitySum is returned when a recipe's quantities sum to zero.
	ErrZeroQuantitySum = errors.New("recipe quantities sum to zero")
	// ErrInvalidRecipe covers every other malformed recipe definition.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// recipeValidator evaluates the validate tags of domain.Recipe.
var recipeValidator = validator.New(validator.WithRequiredStructEnabled())

// Catalog is an ordered, read-only set of recipes keyed by name.
type Catalog struct {
	recipes []domain.Recipe
	byName  map[string]int
}

type catalogFile struct {
	Recipes []domain.Recipe `yaml:"recipes"`
}

// Default returns the embedded catalog. It panics if the embedded file is invalid,
// which only a broken build can cause.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded recipe catalog: %v", err))
	}
	return c
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("recipe catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}
	return New(file.Recipes...)
}

// New builds a catalog from recipes in the given order and validates it.
func New(recipes ...domain.Recipe) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]domain.Recipe, 0, len(recipes)),
		byName:  make(map[string]int, len(recipes)),
	}
	for _, r := range recipes {
		r.Name = strings.TrimSpace(r.Name)
		if _, dup := c.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRecipe, r.Name)
		}
		c.byName[r.Name] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every recipe. Any failure is a configuration error that should stop
// startup.
func (c *Catalog) Validate() error {
	if len(c.recipes) == 0 {
		return ErrEmptyCatalog
	}
	for _, r := range c.recipes {
		if err := ValidateRecipe(r); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRecipe checks a single recipe definition.
func ValidateRecipe(r domain.Recipe) error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecipe)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: %q has no ingredients", ErrInvalidRecipe, r.Name)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Ingredient) == "" {
			return fmt.Errorf("%w: %q line %d has no ingredient name", ErrInvalidRecipe, r.Name, i+1)
		}
		if math.IsNaN(ing.Quantity) || math.IsInf(ing.Quantity, 0) {
			return fmt.Errorf("%w: %q ingredient %q has non-finite quantity %v", ErrInvalidRecipe, r.Name, ing.Ingredient, ing.Quantity)
		}
		if ing.Quantity < 0 {
			return fmt.Errorf("%w: %q ingredient %q has negative quantity %v", ErrInvalidRecipe, r.Name, ing.Ingredient, ing.Quantity)
		}
		if dataprocessing.NormalizeCode(ing.Code) == "" {
			return fmt.Errorf("%w: %q ingredient %q has no classification code", ErrInvalidRecipe, r.Name, ing.Ingredient)
		}
	}
	total := r.TotalQuantity()
	if total <= 0 {
		return fmt.Errorf("%w: %q", ErrZeroQuantitySum, r.Name)
	}
	if math.IsInf(total, 0) {
		return fmt.Errorf("%w: %q quantities overflow", ErrInvalidRecipe, r.Name)
	}
	// zero quantities on single lines are caught by gt=0
	if err := recipeValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidRecipe, r.Name, err)
	}
	return nil
}

// Names returns the recipe names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.recipes))
	for i, r := range c.recipes {
		names[i] = r.Name
	}
	return names
}

// Get returns the named recipe.
func (c *Catalog) Get(name string) (domain.Recipe, error) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return domain.Recipe{}, fmt.Errorf("%w: %q", ErrRecipeNotFound, name)
	}
	return c.recipes[i], nil
}

// Recipes returns every recipe in catalog order.
func (c *Catalog) Recipes() []domain.Recipe {
	out := make([]domain.Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Len returns the number of recipes.
func (c *Catalog) Len() int { return len(c.recipes) }
