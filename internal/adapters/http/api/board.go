package api

import (
	"net/http"
	"strings"

	service "github.com/okian/nbapicks/internal/app"
)

// BoardHandler serves schedule, odds and team form listings.
type BoardHandler struct {
	deps Dependencies
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps Dependencies) *BoardHandler {
	return &BoardHandler{deps: deps}
}

// HandleGames handles GET /api/games?date=.
func (h *BoardHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Games(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, res)
}

// HandleOdds handles GET /api/odds. Upstream failures are reported inside
// the result, not as an error status.
func (h *BoardHandler) HandleOdds(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.deps.Odds(r.Context()))
}

// HandleRecentForm handles GET /api/last10?teamId=. Requires a paid subscription.
func (h *BoardHandler) HandleRecentForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := strings.TrimSpace(r.URL.Query().Get("teamId"))
	if teamID == "" {
		writeError(w, ErrMissingTeamID)
		return
	}
	if err := h.deps.Authorize(ctx, userID(r), service.FeatureRecentForm); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.deps.RecentForm(ctx, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, res)
}
