package api

import (
	"net/http"
)

// ScheduleHandler serves daily schedules and boards.
type ScheduleHandler struct {
	deps Dependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps Dependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandleGetSchedule handles GET /schedule/{date}[?force=true].
func (h *ScheduleHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	date := pathParam(r, "/schedule/")
	if date == "" {
		writeError(w, ErrBadRequest)
		return
	}
	force, err := parseForce(r)
	if err != nil {
		writeError(w, err)
		return
	}
	day, err := h.deps.DailySchedule(r.Context(), date, force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// HandleGetBoard handles GET /board/{date}[?force=true].
func (h *ScheduleHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	date := pathParam(r, "/board/")
	if date == "" {
		writeError(w, ErrBadRequest)
		return
	}
	force, err := parseForce(r)
	if err != nil {
		writeError(w, err)
		return
	}
	board, err := h.deps.Board(r.Context(), date, force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
