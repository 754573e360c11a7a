package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/malaebhub/malaeb-server/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	var req services.CreateTeamRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teamID, err := h.teamService.Create(r.Context(), uid, &req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "teamId": teamID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update handles PATCH /teams/{teamID}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")

	var req services.UpdateTeamRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.Update(r.Context(), uid, teamID, &req); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ChangeCoach handles POST /teams/{teamID}/change-coach.
func (h *TeamHandler) ChangeCoach(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")

	var req struct {
		MemberID string `json:"memberid"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.ChangeCoach(r.Context(), uid, req.MemberID, teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leave handles POST /teams/{teamID}/leave, the coach disband path.
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")

	if err := h.teamService.LeaveForCoach(r.Context(), uid, teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo handles POST /teams/{teamID}/logo as a multipart form
// with a single "logo" file field.
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	location, err := h.teamService.UploadLogo(r.Context(), uid, teamID,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teamLogo": location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
