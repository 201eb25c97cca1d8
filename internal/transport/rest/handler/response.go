package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"surveygraph/internal/service"
	"surveygraph/internal/transport/rest/middleware"
)

// ResponseHandler handles response endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// Get handles GET /v1/responses/{responseId}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["responseId"]
	sessionID := middleware.GetSessionID(r.Context())

	view, err := h.responseSvc.Get(r.Context(), id, sessionID)
	switch {
	case errors.Is(err, service.ErrResponseNotFound):
		writeError(w, http.StatusNotFound, "response not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "response belongs to another session")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to load response")
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

type respondRequest struct {
	Values map[string]any `json:"values"`
}

// Respond handles POST /v1/responses/{responseId}/respond
func (h *ResponseHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["responseId"]
	sessionID := middleware.GetSessionID(r.Context())

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.responseSvc.Respond(r.Context(), id, req.Values, sessionID)
	switch {
	case errors.Is(err, service.ErrResponseNotFound):
		writeError(w, http.StatusNotFound, "response not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "response belongs to another session")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "response is being modified concurrently")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to process response")
	case len(result.Errors) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}
