package api

import (
	"errors"
	"net/http"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/shared"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/review"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/sync"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
)

// MapErrorToStatusCode translates service and domain errors into HTTP status
// codes. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrUnknownItem),
		errors.Is(err, sync.ErrUnknownDomain),
		errors.Is(err, sync.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, sync.ErrLearnerMismatch),
		errors.Is(err, sync.ErrMigrationInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, domain.ErrInvalidItemDomain),
		errors.Is(err, domain.ErrInvalidItemLevel),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages for
// expected errors pass through; anything unexpected is flattened to a
// generic message so internals never leak.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, review.ErrUnknownItem):
		return "Item not found in catalog"
	case errors.Is(err, sync.ErrUnknownDomain):
		return "Unknown item domain"
	case errors.Is(err, sync.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, sync.ErrLearnerMismatch):
		return "Session is bound to a different learner"
	case errors.Is(err, sync.ErrMigrationInProgress):
		return "Sign-in already in progress"
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return "Not found"
	case errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, domain.ErrInvalidItemDomain),
		errors.Is(err, domain.ErrInvalidItemLevel):
		return err.Error()
	default:
		return "An internal error occurred"
	}
}

// HandleServiceError writes the standard error response for a service error,
// optionally overriding the client-facing message.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)
	message := overrideMessage
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
