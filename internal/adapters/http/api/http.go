// Package api exposes the medal data over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/medalboard/internal/app"
	"github.com/okian/medalboard/internal/domain/model"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Medals(ctx context.Context, force bool) (model.StandingsFeed, error)
	Medallists(ctx context.Context, force bool) (model.MedallistsFeed, error)
	DailySchedule(ctx context.Context, date string, force bool) (model.Schedule, error)
	Board(ctx context.Context, date string, force bool) (service.Board, error)
	RefreshAll(ctx context.Context) service.Outcome
	LastUpdateISO() *string
}

// Server wires HTTP routes for the medal API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	medalsHandler   *MedalsHandler
	scheduleHandler *ScheduleHandler
	refreshHandler  *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		medalsHandler:   NewMedalsHandler(deps),
		scheduleHandler: NewScheduleHandler(deps),
		refreshHandler:  NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/medals", MetricsMiddleware(s.medalsHandler.HandleGetMedals, "medals"))
	mux.HandleFunc("/medallists", MetricsMiddleware(s.medalsHandler.HandleGetMedallists, "medallists"))
	mux.HandleFunc("/schedule/", MetricsMiddleware(s.scheduleHandler.HandleGetSchedule, "schedule"))
	mux.HandleFunc("/board/", MetricsMiddleware(s.scheduleHandler.HandleGetBoard, "board"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("/last-update", MetricsMiddleware(s.refreshHandler.HandleLastUpdate, "last_update"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": message} with the status it maps to.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// allowMethod answers 405 with an Allow header unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	return false
}

func parseForce(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("force")
	if v == "" {
		return false, nil
	}
	force, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBadRequest, ErrBadForce)
	}
	return force, nil
}

// pathParam returns the single segment after prefix, or "" if there is none.
func pathParam(r *http.Request, prefix string) string {
	p := strings.TrimPrefix(r.URL.Path, prefix)
	if p == "" || strings.Contains(p, "/") {
		return ""
	}
	return p
}
