package api

import (
	"net/http"
)

// RefreshHandler triggers refreshes and reports the last update.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Success    bool    `json:"success"`
	RunID      string  `json:"runId"`
	LastUpdate *string `json:"lastUpdate"`
	Medals     string  `json:"medals"`
	Medallists string  `json:"medallists"`
}

type lastUpdateResponse struct {
	LastUpdate *string `json:"lastUpdate"`
}

func feedStatus(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

// HandleRefresh handles POST /refresh. It always succeeds; per-feed
// failures are reported in the body.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	out := h.deps.RefreshAll(r.Context())
	writeJSON(w, http.StatusOK, refreshResponse{
		Success:    true,
		RunID:      out.RunID,
		LastUpdate: out.LastUpdate,
		Medals:     feedStatus(out.Medals.Err),
		Medallists: feedStatus(out.Medallists.Err),
	})
}

// HandleLastUpdate handles GET /last-update.
func (h *RefreshHandler) HandleLastUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, lastUpdateResponse{LastUpdate: h.deps.LastUpdateISO()})
}
