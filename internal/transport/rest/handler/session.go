package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"surveygraph/internal/service"
	"surveygraph/internal/transport/rest/middleware"
)

// SessionHandler handles respondent session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

type startSessionRequest struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// Start handles POST /v1/surveys/{surveyId}/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	var req startSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.sessionSvc.Start(r.Context(), surveyID, service.StartParams{
		Authenticated: req.Authenticated,
		Email:         req.Email,
		Phone:         req.Phone,
	})
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		writeError(w, http.StatusNotFound, "survey not found")
	case errors.Is(err, service.ErrAuthRequired):
		writeError(w, http.StatusForbidden, "survey requires authentication")
	case errors.Is(err, service.ErrEmptySurvey):
		writeError(w, http.StatusUnprocessableEntity, "survey has no visible questions")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to start session")
	default:
		writeJSON(w, http.StatusCreated, result)
	}
}

// Get handles GET /v1/session, returning the caller's own session as
// identified by the bearer token.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	session, err := h.sessionSvc.Get(r.Context(), sessionID)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to load session")
	default:
		writeJSON(w, http.StatusOK, session)
	}
}
