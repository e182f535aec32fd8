package http

import (
	"log/slog"
	"net/http"

	"keksindex/internal/charts"
	"keksindex/internal/dataprocessing"
	apierrors "keksindex/internal/errors"
	"keksindex/internal/exporter"
	"keksindex/internal/recipes"
	"keksindex/internal/services"
)

// NewErrorHandler returns an ErrorHandler that knows the domain sentinels.
// Schema errors are registered before ErrStoreUnavailable because services wrap both.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(logger, includeStack).
		Register(recipes.ErrRecipeNotFound, http.StatusNotFound, apierrors.TypeRecipeNotFound, "Recipe Not Found").
		Register(dataprocessing.ErrMissingColumn, http.StatusServiceUnavailable, apierrors.TypeDataSchema, "Data Source Schema Invalid").
		Register(dataprocessing.ErrNoValueColumn, http.StatusServiceUnavailable, apierrors.TypeDataSchema, "Data Source Schema Invalid").
		Register(dataprocessing.ErrEmptySource, http.StatusServiceUnavailable, apierrors.TypeDataSchema, "Data Source Empty").
		Register(services.ErrStoreUnavailable, http.StatusServiceUnavailable, apierrors.TypeDataUnavailable, "Data Unavailable").
		Register(exporter.ErrUnsupportedFormat, http.StatusBadRequest, apierrors.TypeExportFormat, "Unsupported Export Format").
		Register(charts.ErrUnknownKind, http.StatusNotFound, apierrors.TypeNotFound, "Unknown Chart")
}
