package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notifications, the caller's inbox.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListForRecipient(r.Context(), uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": notifications}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Respond handles POST /notifications/{notificationID}/respond. The
// recorded action may trigger a reaction workflow; reaction outcomes
// arrive as new notifications, not in this response.
func (h *NotificationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	notificationID := chi.URLParam(r, "notificationID")

	var req struct {
		Action models.Action `json:"action"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.notificationService.Respond(r.Context(), uid, notificationID, req.Action); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
