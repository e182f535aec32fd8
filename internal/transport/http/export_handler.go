package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "keksindex/internal/errors"
	"keksindex/internal/exporter"
	"keksindex/internal/middleware"
	api "keksindex/pkg/contracts/api/v1"
)

// ExportHandler serves CSV and XLSX downloads
type ExportHandler struct {
	service      ExportServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Export)
	return r
}

// Export handles GET /api/v1/export. The file is built in memory so a failure
// still produces a problem response instead of a truncated download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := api.ExportQuery{
		Recipe: values.Get("recipe"),
		Region: values.Get("region"),
		Format: values.Get("format"),
	}
	if !h.validator.Validate(w, r, h.errorHandler, &q) {
		return
	}

	format, err := exporter.ParseFormat(q.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, q.Recipe, q.Region, format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := exporter.Filename(q.Region, q.Recipe, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}
