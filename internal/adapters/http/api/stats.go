// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats and session-flag requests.
type StatsHandler struct {
	statsProvider StatsProvider
	deps          Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, deps Dependencies) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, deps: deps}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}

// HandleWelcome handles GET /welcome. The first call of a session
// reports show=true and flips the flag; later calls report show=false.
func (h *StatsHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seen := h.deps.WelcomeSeen(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"show": !seen})
}
