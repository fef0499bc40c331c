package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lexiquest/internal/auth"
	httperrors "lexiquest/pkg/http/errors"
)

// HTTPHandlers provides the REST surface for game sessions.
type HTTPHandlers struct {
	service *Service
	tokens  *auth.Manager
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, tokens *auth.Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		tokens:  tokens,
		logger:  logger.With().Str("component", "game_http").Logger(),
	}
}

// StartSession handles POST /v1/sessions
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req StartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
	}

	session, view, err := h.service.Start(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to start session")
		httperrors.RespondInternalError(w, "could not start session")
		return
	}

	token, err := h.tokens.Issue(session.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue session token")
		httperrors.RespondInternalError(w, "could not issue token")
		return
	}

	h.respondJSON(w, http.StatusCreated, StartResponse{
		SessionID: session.ID,
		Token:     token,
		Question:  view,
	})
}

// GetQuestion handles GET /v1/sessions/{id}
func (h *HTTPHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// TypeLetter handles POST /v1/sessions/{id}/letters
func (h *HTTPHandlers) TypeLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.service.TypeLetter(r.Context(), id, req.Letter)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Backspace handles DELETE /v1/sessions/{id}/letters
func (h *HTTPHandlers) Backspace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Backspace(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Letters dispatches POST/DELETE on /v1/sessions/{id}/letters
func (h *HTTPHandlers) Letters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.TypeLetter(w, r)
	case http.MethodDelete:
		h.Backspace(w, r)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
	}
}

// SubmitAnswer handles POST /v1/sessions/{id}/submit
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Submit(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, outcome)
}

// SkipQuestion handles POST /v1/sessions/{id}/skip
func (h *HTTPHandlers) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Skip(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, outcome)
}

// UseWildcard handles POST /v1/sessions/{id}/wildcards
func (h *HTTPHandlers) UseWildcard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	outcome, err := h.service.UseWildcard(r.Context(), id, req.Kind)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, outcome)
}

// FinishSession handles POST /v1/sessions/{id}/finish
func (h *HTTPHandlers) FinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Finish(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// GetStats handles GET /v1/sessions/{id}/stats
func (h *HTTPHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// sessionID resolves and authorizes the {id} path segment. The session token
// must match the addressed session.
func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Invalid session id")
		return uuid.Nil, false
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing session token")
		return uuid.Nil, false
	}
	if claims.SessionID != id {
		httperrors.RespondError(w, http.StatusForbidden, httperrors.ErrCodeForbidden, "Token does not match session")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrSessionCompleted):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeSessionCompleted, "Session already completed")
	case errors.Is(err, ErrInvalidLetter):
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidLetter, "Input must be a single letter", "letter")
	case errors.Is(err, ErrUnknownWildcard):
		httperrors.RespondValidationError(w, httperrors.ErrCodeUnknownWildcard, "Unknown wildcard kind", "kind")
	default:
		h.logger.Error().Err(err).Msg("session operation failed")
		httperrors.RespondInternalError(w, "operation failed")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
