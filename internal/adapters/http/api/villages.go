// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
)

// VillagesHandler handles village feature requests.
type VillagesHandler struct {
	deps Dependencies
}

// NewVillagesHandler creates a new villages handler.
func NewVillagesHandler(deps Dependencies) *VillagesHandler {
	return &VillagesHandler{deps: deps}
}

// HandleListVillages handles GET /villages requests: every village
// visible under the current selection, with classifier outcomes. An
// empty list under NoSelection is deliberate, not an error.
func (h *VillagesHandler) HandleListVillages(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_villages"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	views, err := h.deps.Villages(r.Context())
	if err != nil {
		writeLoadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGetVillage handles GET /villages/{geoKey} requests for the side
// panel breakdown, independent of selection.
func (h *VillagesHandler) HandleGetVillage(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_village"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	geoKey := strings.TrimPrefix(r.URL.Path, "/villages/")
	if geoKey == "" || strings.Contains(geoKey, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	view, err := h.deps.Village(r.Context(), geoKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeLoadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
