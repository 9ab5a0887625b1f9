package api

import (
	"log/slog"
	"net/http"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/middleware"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/shared"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/logger"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/sync"
)

// SessionHandler handles sync-session lifecycle requests.
type SessionHandler struct {
	manager *sync.Manager
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(manager *sync.Manager, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	if manager == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("manager cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		manager: manager,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions requests.
// It starts a new anonymous session backed by the local cache.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, err := h.manager.Create(r.Context())
	if err != nil {
		log.Error("failed to create session", slog.Any("error", err))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	log.Debug("session created", slog.String("session_id", session.ID().String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /session requests.
// It reports the current session's lifecycle state.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// SignIn handles POST /session/sign-in requests.
// The authenticated learner ID comes from the Bearer token; local progress is
// migrated to the learner's remote records before the session switches over.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return
	}

	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		log.Warn("learner ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found")
		return
	}

	if err := session.SignIn(r.Context(), learnerID); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	log.Info("learner signed in",
		slog.String("session_id", session.ID().String()),
		slog.String("learner_id", learnerID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// SignOut handles POST /session/sign-out requests.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.SignOut(r.Context()); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	log.Debug("learner signed out", slog.String("session_id", session.ID().String()))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// DeleteSession handles DELETE /session requests.
// Persisted records survive; only the in-memory session goes away.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return
	}

	if err := h.manager.Delete(session.ID()); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
