package api

import (
	"net/http"
	"strings"

	service "github.com/okian/nbapicks/internal/app"
)

// PicksHandler serves gated pick endpoints.
type PicksHandler struct {
	deps Dependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps Dependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// HandleRecommendations handles GET /api/recommendations?date=.
// Requires a paid subscription.
func (h *PicksHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.deps.Authorize(ctx, userID(r), service.FeatureRecommendations); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.deps.Recommendations(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, rec)
}

type pickRequest struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
}

// HandlePick handles GET /api/pick?gameId=&date= and POST /api/pick with a
// JSON body. Unpaid callers spend their daily allowance.
func (h *PicksHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := pickRequest{GameID: r.URL.Query().Get("gameId"), Date: r.URL.Query().Get("date")}
	if r.Method == http.MethodPost {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if strings.TrimSpace(req.GameID) == "" {
		writeError(w, ErrMissingGameID)
		return
	}
	if err := h.deps.Authorize(ctx, userID(r), service.FeatureAnalysis); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.deps.AnalyzeGame(ctx, req.GameID, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, res)
}
