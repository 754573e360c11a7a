package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/malaebhub/malaeb-server/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// Update handles POST /matches/{matchID}. The payload is polymorphic:
// coach scheduling fields while the match is being negotiated, referee
// operation fields afterwards.
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	var req services.UpdateMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.UpdateMatch(r.Context(), uid, matchID, &req); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Cancel handles POST /matches/{matchID}/cancel.
func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	if err := h.matchService.CancelMatch(r.Context(), uid, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
