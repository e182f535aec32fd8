package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "keksindex/internal/errors"
	api "keksindex/pkg/contracts/api/v1"
)

// RecipeHandler serves the recipe catalog
type RecipeHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RecipeHandler {
	return &RecipeHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "recipe_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the recipe routes
func (h *RecipeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListRecipes)
	r.Get("/{name}", h.GetRecipe)
	return r
}

// ListRecipes handles GET /api/v1/recipes
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	list := h.service.Recipes(r.Context())

	resp := api.RecipeListResponse{
		Recipes: make([]api.RecipeSummary, 0, len(list)),
		Count:   len(list),
	}
	for _, rec := range list {
		resp.Recipes = append(resp.Recipes, api.RecipeSummary{
			Name:        rec.Name,
			Ingredients: len(rec.Ingredients),
		})
	}
	render.JSON(w, r, resp)
}

// GetRecipe handles GET /api/v1/recipes/{name}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "name is required"))
		return
	}

	rec, props, err := h.service.Recipe(r.Context(), name)
	if err != nil {
		h.logger.DebugContext(r.Context(), "recipe lookup failed",
			slog.String("recipe", name),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.RecipeResponse{
		Recipe:        rec,
		TotalQuantity: rec.TotalQuantity(),
		Proportions:   props,
	})
}
