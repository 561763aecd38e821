// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ExportHandler serves annotation downloads.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExportCSV handles GET /annotations/export.csv requests.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_csv"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="annotations.csv"`)
	if err := h.deps.ExportAnnotationsCSV(r.Context(), w); err != nil {
		// Headers are gone; all we can do is cut the stream.
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// HandleExportKML handles GET /annotations/export.kml requests.
func (h *ExportHandler) HandleExportKML(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_kml"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="annotations.kml"`)
	if err := h.deps.ExportAnnotationsKML(r.Context(), w); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
