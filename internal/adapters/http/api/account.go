package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// AccountHandler serves subscription and history endpoints for the caller.
type AccountHandler struct {
	deps Dependencies
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps Dependencies) *AccountHandler {
	return &AccountHandler{deps: deps}
}

// HandleSubscriptionStatus handles GET /api/subscription/status.
func (h *AccountHandler) HandleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.SubscriptionStatus(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, st)
}

// HandleActivate handles POST /api/admin/subscription/activate.
func (h *AccountHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.ActivateSubscription(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, st)
}

// HandleListHistory handles GET /api/history?limit=.
func (h *AccountHandler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, ErrBadRequest)
			return
		}
		limit = n
	}
	items, err := h.deps.ListHistory(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, items)
}

type historyRequest struct {
	Date    string          `json:"date"`
	Payload json.RawMessage `json:"payload"`
}

// HandleSaveHistory handles POST /api/history.
func (h *AccountHandler) HandleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	e, err := h.deps.SaveHistory(r.Context(), userID(r), req.Date, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, e)
}

// HandleDeleteHistory handles DELETE /api/history?id=.
func (h *AccountHandler) HandleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, ErrMissingID)
		return
	}
	if err := h.deps.DeleteHistory(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"deleted": id})
}
