package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "keksindex/internal/errors"
	"keksindex/internal/middleware"
	api "keksindex/pkg/contracts/api/v1"
)

// IndexHandler serves regions, index series and the dashboard bundle
type IndexHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(service DashboardServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *IndexHandler {
	return &IndexHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "index_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the index routes. Mount under /api/v1.
func (h *IndexHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/regions", h.ListRegions)
	r.Get("/index/ingredients", h.GetIngredientSeries)
	r.Get("/index/composite", h.GetCompositeIndex)
	r.Get("/dashboard", h.GetDashboard)
	return r
}

// ListRegions handles GET /api/v1/regions
func (h *IndexHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.RegionListResponse{Regions: regions, Count: len(regions)})
}

// GetIngredientSeries handles GET /api/v1/index/ingredients
func (h *IndexHandler) GetIngredientSeries(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindIndexQuery(w, r)
	if !ok {
		return
	}

	series, err := h.service.IngredientSeries(r.Context(), q.Recipe, q.Region)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.IngredientSeriesResponse{
		Recipe: q.Recipe,
		Region: q.Region,
		Series: series,
		Count:  len(series),
	})
}

// GetCompositeIndex handles GET /api/v1/index/composite
func (h *IndexHandler) GetCompositeIndex(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindIndexQuery(w, r)
	if !ok {
		return
	}

	series, bounds, err := h.service.CompositeIndex(r.Context(), q.Recipe, q.Region)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.CompositeIndexResponse{
		Recipe: q.Recipe,
		Region: q.Region,
		Series: series,
		Count:  len(series),
		Bounds: bounds,
	})
}

// GetDashboard handles GET /api/v1/dashboard
func (h *IndexHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindIndexQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), q.Recipe, q.Region)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if dashboard.Empty {
		h.logger.InfoContext(r.Context(), "dashboard has no data",
			slog.String("recipe", q.Recipe),
			slog.String("region", q.Region),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
	}
	render.JSON(w, r, dashboard)
}

func (h *IndexHandler) bindIndexQuery(w http.ResponseWriter, r *http.Request) (api.IndexQuery, bool) {
	values := r.URL.Query()
	q := api.IndexQuery{
		Recipe: values.Get("recipe"),
		Region: values.Get("region"),
	}
	return q, h.validator.Validate(w, r, h.errorHandler, &q)
}
