package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/middleware"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/api/shared"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/logger"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/review"
)

// defaultNextCount is how many items a review queue request returns when the
// client does not ask for a specific count.
const defaultNextCount = 10

// ReviewHandler handles review scheduling and grading requests. Every route
// is scoped to an item domain via the {domain} path parameter.
type ReviewHandler struct {
	logger *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		logger: logger.With(slog.String("component", "review_handler")),
	}
}

// storeFromRequest resolves the session and domain-scoped review store for a
// request. It writes the error response itself when resolution fails.
func (h *ReviewHandler) storeFromRequest(w http.ResponseWriter, r *http.Request) (*review.Store, bool) {
	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return nil, false
	}

	itemDomain := domain.ItemDomain(chi.URLParam(r, "domain"))
	reviewStore, err := session.Store(itemDomain)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return nil, false
	}
	return reviewStore, true
}

// GetNextItems handles GET /domains/{domain}/review/next requests.
// It returns up to count items ordered by review priority: due items first,
// most urgent at the front, followed by upcoming items.
func (h *ReviewHandler) GetNextItems(w http.ResponseWriter, r *http.Request) {
	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	count := defaultNextCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = parsed
	}
	category := r.URL.Query().Get("category")

	items := reviewStore.SelectNext(count, category)
	shared.RespondWithJSON(w, r, http.StatusOK, itemsToResponse(items))
}

// GetDueItems handles GET /domains/{domain}/review/due requests.
func (h *ReviewHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	items := reviewStore.SelectDue(r.URL.Query().Get("category"))
	shared.RespondWithJSON(w, r, http.StatusOK, itemsToResponse(items))
}

// GetRecord handles GET /domains/{domain}/items/{itemID}/record requests.
func (h *ReviewHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	record, err := reviewStore.GetRecord(itemID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}
	difficulty, err := reviewStore.Difficulty(itemID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record, difficulty))
}

// SubmitOutcome handles POST /domains/{domain}/items/{itemID}/outcome requests.
// It grades the answer from correctness and latency and reschedules the item.
func (h *ReviewHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	var req OutcomeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "correct is required and latency_ms must not be negative")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	record, err := reviewStore.RecordOutcome(r.Context(), itemID, *req.Correct,
		time.Duration(req.LatencyMs)*time.Millisecond)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	log.Debug("outcome recorded",
		slog.String("item_id", itemID),
		slog.Bool("correct", *req.Correct),
		slog.Int("repetitions", record.Repetitions))
	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record, reviewStore.DifficultyOf(record)))
}

// SubmitQuality handles POST /domains/{domain}/items/{itemID}/quality requests.
// It applies an explicit 0..5 grade instead of inferring one from timing.
func (h *ReviewHandler) SubmitQuality(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	var req QualityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "quality must be between 0 and 5")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	record, err := reviewStore.RecordQuality(r.Context(), itemID, *req.Quality)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	log.Debug("quality recorded",
		slog.String("item_id", itemID),
		slog.Int("quality", *req.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record, reviewStore.DifficultyOf(record)))
}

// GetStats handles GET /domains/{domain}/stats requests.
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	summary := reviewStore.Stats(category)

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		Domain:   string(reviewStore.Domain()),
		Category: category,
		DueNow:   summary.DueNow,
		Learning: summary.Learning,
		Mastered: summary.Mastered,
	})
}

// ResetProgress handles POST /domains/{domain}/reset requests.
// It wipes every record for the domain, in memory and in the backing store.
func (h *ReviewHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	reviewStore, ok := h.storeFromRequest(w, r)
	if !ok {
		return
	}

	reviewStore.ResetAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
