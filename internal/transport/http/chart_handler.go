package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"keksindex/internal/charts"
	apierrors "keksindex/internal/errors"
	"keksindex/internal/middleware"
	"keksindex/internal/services"
	api "keksindex/pkg/contracts/api/v1"
)

// ChartHandler serves PNG charts
type ChartHandler struct {
	service      ChartServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ChartServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}.png", h.Render)
	return r
}

// Render handles GET /api/v1/charts/{kind}.png
func (h *ChartHandler) Render(w http.ResponseWriter, r *http.Request) {
	kind, err := charts.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	values := r.URL.Query()
	q := api.ChartQuery{
		Recipe: values.Get("recipe"),
		Region: values.Get("region"),
	}
	for _, dim := range []struct {
		name string
		dst  *int
	}{{"width", &q.Width}, {"height", &q.Height}} {
		name, dst := dim.name, dim.dst
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(name, name+" must be an integer"))
			return
		}
		*dst = n
	}
	if !h.validator.Validate(w, r, h.errorHandler, &q) {
		return
	}
	if kind != charts.KindProportions && q.Region == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "region is required"))
		return
	}

	var buf bytes.Buffer
	err = h.service.Render(r.Context(), &buf, kind, services.ChartRequest{
		Recipe: q.Recipe,
		Region: q.Region,
		Width:  q.Width,
		Height: q.Height,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "chart write interrupted",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}
