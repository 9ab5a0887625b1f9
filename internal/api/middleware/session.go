package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/shared"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/sync"
)

// SessionHeader carries the sync session ID on every request after the
// session has been created.
const SessionHeader = "X-Session-ID"

type sessionContextKey struct{}

// SessionMiddleware resolves the X-Session-ID header to a live sync session
// and stores it in the request context. Requests without a valid session are
// rejected, so handlers behind this middleware can assume one exists.
func SessionMiddleware(manager *sync.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(SessionHeader)
			if header == "" {
				shared.RespondWithError(w, r, http.StatusBadRequest, "X-Session-ID header required")
				return
			}

			sessionID, err := uuid.Parse(header)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
				return
			}

			session, err := manager.Get(sessionID)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the sync session from the request context.
// Returns the session and a boolean indicating if it was found.
func GetSession(r *http.Request) (*sync.Session, bool) {
	session, ok := r.Context().Value(sessionContextKey{}).(*sync.Session)
	return session, ok
}
