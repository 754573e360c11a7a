package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/malaebhub/malaeb-server/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// LeaveTeam handles POST /tournaments/{tournamentID}/leave-team.
func (h *TournamentHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	tournamentID := chi.URLParam(r, "tournamentID")

	var req struct {
		TeamID string `json:"teamid"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.LeaveForTeam(r.Context(), uid, tournamentID, req.TeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveReferee handles POST /tournaments/{tournamentID}/leave-referee.
func (h *TournamentHandler) LeaveReferee(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	tournamentID := chi.URLParam(r, "tournamentID")

	if err := h.tournamentService.LeaveForReferee(r.Context(), uid, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Remove handles DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	tournamentID := chi.URLParam(r, "tournamentID")

	if err := h.tournamentService.Remove(r.Context(), uid, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
