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

// StoreHandler exposes series store diagnostics and reloads
type StoreHandler struct {
	service      StoreServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service StoreServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StoreHandler {
	return &StoreHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "store_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the store routes
func (h *StoreHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDiagnostics)
	r.Post("/reload", h.Reload)
	return r
}

// GetDiagnostics handles GET /api/v1/store
func (h *StoreHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := h.service.Diagnostics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, diag)
}

// Reload handles POST /api/v1/store/reload
func (h *StoreHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "store reload requested",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("remote_addr", middleware.GetRealIP(r)))

	diag, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ReloadResponse{Status: "reloaded", Diagnostics: diag})
}
