// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tienyuan-huang/election/internal/domain/selection"
)

// SelectionHandler handles selector options and selection transitions.
type SelectionHandler struct {
	deps Dependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

// HandleGetOptions handles GET /districts requests: the selector payload
// for the current filter.
func (h *SelectionHandler) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_districts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opts, err := h.deps.Options(r.Context())
	if err != nil {
		writeLoadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// selectionRequest mirrors the selection events the UI can emit.
type selectionRequest struct {
	Action   string `json:"action"` // district | all | query | clear
	District string `json:"district,omitempty"`
	Query    string `json:"query,omitempty"`
}

func (req selectionRequest) event() (selection.Event, error) {
	switch req.Action {
	case "district":
		if req.District == "" {
			return selection.Event{}, errors.New("missing district")
		}
		return selection.Event{Kind: selection.ChooseDistrict, District: req.District}, nil
	case "all":
		return selection.Event{Kind: selection.ChooseAll}, nil
	case "query":
		return selection.Event{Kind: selection.SetQuery, Query: req.Query}, nil
	case "clear":
		return selection.Event{Kind: selection.ClearQuery}, nil
	}
	return selection.Event{}, errors.New("unknown action")
}

// HandleSelection handles GET and POST /selection requests.
func (h *SelectionHandler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	const op = "api.selection"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Selection(r.Context()))

	case http.MethodPost:
		var req selectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		event, err := req.event()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		next, err := h.deps.Dispatch(r.Context(), event)
		if err != nil {
			writeLoadError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, next)

	default:
		http.NotFound(w, r)
	}
}
