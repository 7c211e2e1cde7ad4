package api

import (
	"fmt"
	"net/http"

	"github.com/okian/medalboard/internal/domain/model"
)

// MedalsHandler serves the standings and the medallists.
type MedalsHandler struct {
	deps Dependencies
}

// NewMedalsHandler creates a new medals handler.
func NewMedalsHandler(deps Dependencies) *MedalsHandler {
	return &MedalsHandler{deps: deps}
}

type standingsResponse struct {
	Standings  []model.Standing `json:"standings"`
	LastUpdate *string          `json:"lastUpdate"`
}

// HandleGetMedals handles GET /medals[?force=true].
func (h *MedalsHandler) HandleGetMedals(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	force, err := parseForce(r)
	if err != nil {
		writeError(w, err)
		return
	}
	feed, err := h.deps.Medals(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standingsResponse{
		Standings:  feed.Normalize(),
		LastUpdate: h.deps.LastUpdateISO(),
	})
}

type recordsResponse struct {
	Records     []model.MedalRecord `json:"records"`
	Disciplines []string            `json:"disciplines"`
	Countries   []string            `json:"countries"`
}

// HandleGetMedallists handles GET /medallists. With any of the discipline,
// country or medal filters it answers flattened, sorted medal records.
func (h *MedalsHandler) HandleGetMedallists(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	force, err := parseForce(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	filter := model.RecordFilter{
		Discipline: q.Get("discipline"),
		Country:    q.Get("country"),
	}
	if m := q.Get("medal"); m != "" {
		filter.MedalType = model.ParseMedalType(m)
		if filter.MedalType == model.Unknown {
			writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, ErrBadMedal))
			return
		}
	}

	feed, err := h.deps.Medallists(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	if filter.IsZero() {
		writeJSON(w, http.StatusOK, feed)
		return
	}

	all := feed.Records()
	writeJSON(w, http.StatusOK, recordsResponse{
		Records:     model.FilterRecords(all, filter),
		Disciplines: model.Disciplines(all),
		Countries:   model.Countries(all),
	})
}
