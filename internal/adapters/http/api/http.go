// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
	"github.com/tienyuan-huang/election/internal/adapters/source"
	service "github.com/tienyuan-huang/election/internal/app"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/selection"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the app service.
type Dependencies interface {
	Years(ctx context.Context) []string
	CurrentYear(ctx context.Context) string
	LoadYear(ctx context.Context, year string) error

	Selection(ctx context.Context) selection.State
	Dispatch(ctx context.Context, e selection.Event) (selection.State, error)
	Options(ctx context.Context) (service.SelectorOptions, error)

	Villages(ctx context.Context) ([]service.VillageView, error)
	Village(ctx context.Context, geoKey string) (service.VillageView, error)

	SaveAnnotation(ctx context.Context, a model.Annotation)
	DeleteAnnotation(ctx context.Context, geoKey string)
	ListAnnotations(ctx context.Context) []service.AnnotationView
	ExportAnnotationsCSV(ctx context.Context, w io.Writer) error
	ExportAnnotationsKML(ctx context.Context, w io.Writer) error
	Subscribe(ctx context.Context) (<-chan repository.Change, func())

	WelcomeSeen(ctx context.Context) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	yearsHandler       *YearsHandler
	selectionHandler   *SelectionHandler
	villagesHandler    *VillagesHandler
	annotationsHandler *AnnotationsHandler
	exportHandler      *ExportHandler
	eventsHandler      *EventsHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		yearsHandler:       NewYearsHandler(deps),
		selectionHandler:   NewSelectionHandler(deps),
		villagesHandler:    NewVillagesHandler(deps),
		annotationsHandler: NewAnnotationsHandler(deps),
		exportHandler:      NewExportHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider, deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/welcome", MetricsMiddleware(s.statsHandler.HandleWelcome, "welcome"))
	mux.HandleFunc("/years", MetricsMiddleware(s.yearsHandler.HandleListYears, "years"))
	mux.HandleFunc("/load", MetricsMiddleware(s.yearsHandler.HandleLoadYear, "load"))
	mux.HandleFunc("/districts", MetricsMiddleware(s.selectionHandler.HandleGetOptions, "districts"))
	mux.HandleFunc("/selection", MetricsMiddleware(s.selectionHandler.HandleSelection, "selection"))
	mux.HandleFunc("/villages", MetricsMiddleware(s.villagesHandler.HandleListVillages, "villages"))
	mux.HandleFunc("/villages/", MetricsMiddleware(s.villagesHandler.HandleGetVillage, "village"))
	mux.HandleFunc("/annotations/export.csv", MetricsMiddleware(s.exportHandler.HandleExportCSV, "export_csv"))
	mux.HandleFunc("/annotations/export.kml", MetricsMiddleware(s.exportHandler.HandleExportKML, "export_kml"))
	mux.HandleFunc("/annotations", MetricsMiddleware(s.annotationsHandler.HandleAnnotations, "annotations"))
	mux.HandleFunc("/annotations/", MetricsMiddleware(s.annotationsHandler.HandleAnnotationByKey, "annotation"))
	mux.HandleFunc("/events", s.eventsHandler.HandleEvents)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLoadError maps the load-time taxonomy to user-facing responses.
// These failures halt the year's load but never the process; the client
// shows the message in its info panel.
func writeLoadError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, source.ErrSchema):
		writeError(w, http.StatusUnprocessableEntity, "schema_error", Wrap(op, err))
	case errors.Is(err, source.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, "parse_error", Wrap(op, err))
	case errors.Is(err, source.ErrFetch):
		writeError(w, http.StatusBadGateway, "fetch_error", Wrap(op, err))
	case errors.Is(err, repository.ErrUnknownYear):
		writeError(w, http.StatusNotFound, "unknown_year", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
