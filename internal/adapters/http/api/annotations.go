// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// AnnotationsHandler handles the user-note CRUD surface.
type AnnotationsHandler struct {
	deps Dependencies
}

// NewAnnotationsHandler creates a new annotations handler.
func NewAnnotationsHandler(deps Dependencies) *AnnotationsHandler {
	return &AnnotationsHandler{deps: deps}
}

// annotationRequest mirrors the save payload. Lat/lng are optional; the
// service falls back to the boundary centroid.
type annotationRequest struct {
	GeoKey string  `json:"geo_key"`
	Name   string  `json:"name"`
	Note   string  `json:"note"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// HandleAnnotations handles GET (list) and POST (save) on /annotations.
func (h *AnnotationsHandler) HandleAnnotations(w http.ResponseWriter, r *http.Request) {
	const op = "api.annotations"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ListAnnotations(r.Context()))

	case http.MethodPost:
		var req annotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(req.GeoKey) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		// Saving an empty note deletes; the store owns that rule.
		h.deps.SaveAnnotation(r.Context(), model.Annotation{
			GeoKey: req.GeoKey,
			Name:   req.Name,
			Note:   req.Note,
			Lat:    req.Lat,
			Lng:    req.Lng,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "geo_key": req.GeoKey})

	default:
		http.NotFound(w, r)
	}
}

// HandleAnnotationByKey handles DELETE /annotations/{geoKey}. Deleting a
// missing key still answers 204; the store treats it as a no-op.
func (h *AnnotationsHandler) HandleAnnotationByKey(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_annotation"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	geoKey := strings.TrimPrefix(r.URL.Path, "/annotations/")
	if geoKey == "" || strings.Contains(geoKey, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.deps.DeleteAnnotation(r.Context(), geoKey)
	w.WriteHeader(http.StatusNoContent)
}
