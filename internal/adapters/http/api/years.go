// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// YearsHandler handles year listing and year loads.
type YearsHandler struct {
	deps Dependencies
}

// NewYearsHandler creates a new years handler.
func NewYearsHandler(deps Dependencies) *YearsHandler {
	return &YearsHandler{deps: deps}
}

type yearsResponse struct {
	Years   []string `json:"years"`
	Current string   `json:"current"`
}

// HandleListYears handles GET /years requests.
func (h *YearsHandler) HandleListYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	years := h.deps.Years(r.Context())
	sort.Strings(years)
	writeJSON(w, http.StatusOK, yearsResponse{
		Years:   years,
		Current: h.deps.CurrentYear(r.Context()),
	})
}

type loadRequest struct {
	Year string `json:"year"`
}

// HandleLoadYear handles POST /load requests. A failed load leaves the
// previously active year in place; the user retries by reissuing it.
func (h *YearsHandler) HandleLoadYear(w http.ResponseWriter, r *http.Request) {
	const op = "api.load_year"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Year) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.LoadYear(r.Context(), req.Year); err != nil {
		writeLoadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "year": req.Year})
}
