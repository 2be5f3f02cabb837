package handler

import (
	"net/http"

	"github.com/vigilance-driver/vigilance-go/internal/middleware"
	"github.com/vigilance-driver/vigilance-go/internal/service"
)

// SessionHandler handles HTTP requests for detection sessions.
// Routes must be wrapped in middleware.JWTAuth; HandleSave also needs
// middleware.DecodeJSONObject in front of it.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// HandleSave handles POST /api/session requests.
func (h *SessionHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	payload, ok := middleware.JSONObjectFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidInput.Error()))
		return
	}

	resp, err := h.service.Save(r.Context(), userID, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/sessions requests.
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	records, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
