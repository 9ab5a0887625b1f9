// Package review implements the per-domain review store: the authoritative
// in-process mapping of item to review record for one learner and one item
// domain. All reads and writes go through the SRS algorithm core; durable
// persistence happens through a write-behind queue so callers never block on
// storage latency.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain/srs"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/logger"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/task"
)

// Common errors
var (
	ErrUnknownItem      = errors.New("item is not in the catalog for this domain")
	ErrNilBackend       = errors.New("record store backend cannot be nil")
	ErrNilWriter        = errors.New("write queue cannot be nil")
	ErrInvalidDomain    = errors.New("invalid item domain")
	ErrInvalidItemEntry = errors.New("invalid catalog item")
)

// Config holds the dependencies for a review store.
type Config struct {
	// Domain selects which learnable-item domain this store manages.
	Domain domain.ItemDomain

	// Items is the static catalog. Entries from other domains are ignored,
	// so the full catalog can be passed to every store.
	Items []domain.Item

	// SRS is the algorithm service. Nil defaults to srs.NewDefaultService.
	SRS srs.Service

	// Backend is the persistence adapter (local cache or remote store).
	Backend store.RecordStore

	// LearnerID namespaces records in the backend. Use
	// store.AnonymousLearnerID for anonymous sessions.
	LearnerID uuid.UUID

	// Writer is the write-behind queue for durable writes.
	Writer *task.Writer

	// Logger for structured logging. Nil defaults to slog.Default.
	Logger *slog.Logger

	// Now is injectable for testing. Nil defaults to time.Now in UTC.
	Now func() time.Time
}

// Store maintains the item -> review record mapping for one learner and one
// item domain. The in-memory map is the read-of-record for the running
// process; the backend is authoritative across restarts.
type Store struct {
	itemDomain domain.ItemDomain
	items      []domain.Item
	itemIndex  map[string]struct{}
	srs        srs.Service
	writer     *task.Writer
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.RWMutex
	records   map[string]*domain.ReviewRecord
	backend   store.RecordStore
	learnerID uuid.UUID
}

// New creates a review store for cfg.Domain over the given catalog.
func New(cfg Config) (*Store, error) {
	if !cfg.Domain.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, cfg.Domain)
	}
	if cfg.Backend == nil {
		return nil, ErrNilBackend
	}
	if cfg.Writer == nil {
		return nil, ErrNilWriter
	}

	srsService := cfg.SRS
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	items := make([]domain.Item, 0)
	index := make(map[string]struct{})
	for _, item := range cfg.Items {
		if item.Domain != cfg.Domain {
			continue
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidItemEntry, err)
		}
		items = append(items, item)
		index[item.ID] = struct{}{}
	}

	return &Store{
		itemDomain: cfg.Domain,
		items:      items,
		itemIndex:  index,
		srs:        srsService,
		writer:     cfg.Writer,
		logger:     logger.With(slog.String("component", "review_store"), slog.String("item_domain", string(cfg.Domain))),
		now:        now,
		records:    make(map[string]*domain.ReviewRecord),
		backend:    cfg.Backend,
		learnerID:  cfg.LearnerID,
	}, nil
}

// Domain returns the item domain this store manages.
func (s *Store) Domain() domain.ItemDomain {
	return s.itemDomain
}

// Items returns the catalog slice for this domain, in catalog order.
func (s *Store) Items() []domain.Item {
	return s.items
}

// Hydrate replaces the in-memory map with the backend's contents. A backend
// failure degrades to an empty map so the session can proceed; sync will
// simply lag until writes repopulate the durable store.
func (s *Store) Hydrate(ctx context.Context) {
	records, err := s.backendSnapshot().GetAll(ctx, s.LearnerID(), s.itemDomain)
	if err != nil {
		s.logger.Warn("failed to hydrate records, starting empty",
			slog.Any("error", err))
		records = make(map[string]*domain.ReviewRecord)
	}
	if records == nil {
		records = make(map[string]*domain.ReviewRecord)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.logger.Debug("hydrated review records", slog.Int("count", len(records)))
}

// Reconcile merges the backend's records into the in-memory map. Where both
// sides hold a record, the newer UpdatedAt wins. In-memory records the
// backend is missing or behind on are scheduled for a durable write, so
// reviews acknowledged before the backend switch are not lost. Records that
// were only lazily materialized and never reviewed are dropped; GetRecord
// recreates them on demand.
func (s *Store) Reconcile(ctx context.Context) {
	loaded, err := s.backendSnapshot().GetAll(ctx, s.LearnerID(), s.itemDomain)
	if err != nil {
		s.logger.Warn("failed to load records for reconcile, keeping in-memory state",
			slog.Any("error", err))
		return
	}
	if loaded == nil {
		loaded = make(map[string]*domain.ReviewRecord)
	}

	s.mu.Lock()
	var ahead []*domain.ReviewRecord
	for id, record := range s.records {
		if record.LastReview.IsZero() && record.CorrectCount == 0 && record.IncorrectCount == 0 {
			continue
		}
		existing, ok := loaded[id]
		if !ok || existing.UpdatedAt.Before(record.UpdatedAt) {
			loaded[id] = record
			ahead = append(ahead, record.Clone())
		}
	}
	s.records = loaded
	backend := s.backend
	learnerID := s.learnerID
	s.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)
	for _, record := range ahead {
		persisted := record
		err := s.writer.Enqueue("upsert", func(ctx context.Context) error {
			return backend.Upsert(ctx, learnerID, s.itemDomain, persisted)
		})
		if err != nil {
			log.Warn("failed to enqueue reconcile write",
				slog.String("item_id", persisted.ItemID),
				slog.Any("error", err))
		}
	}
	log.Debug("reconciled review records",
		slog.Int("count", len(loaded)),
		slog.Int("pushed", len(ahead)))
}

// GetRecord returns the review record for an item, lazily materializing the
// initial state on first access. The returned record is a copy; mutations
// only happen through RecordOutcome and RecordQuality.
func (s *Store) GetRecord(itemID string) (*domain.ReviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateLocked(itemID)
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// RecordOutcome records a binary review outcome with optional response
// latency (non-positive = no timing), derives the quality, applies the SRS
// transition, and returns the updated record. The in-memory map is updated
// synchronously; the durable write happens in the background.
func (s *Store) RecordOutcome(ctx context.Context, itemID string, correct bool, responseTime time.Duration) (*domain.ReviewRecord, error) {
	return s.applyReview(ctx, itemID, func(record *domain.ReviewRecord, now time.Time) (*domain.ReviewRecord, error) {
		return s.srs.NextStateFromOutcome(record, correct, responseTime, now)
	})
}

// RecordQuality records an explicit 0..5 self-assessed quality value.
func (s *Store) RecordQuality(ctx context.Context, itemID string, quality int) (*domain.ReviewRecord, error) {
	return s.applyReview(ctx, itemID, func(record *domain.ReviewRecord, now time.Time) (*domain.ReviewRecord, error) {
		return s.srs.NextState(record, quality, now)
	})
}

// SelectNext returns up to count items ordered by the scheduling policy:
// every due item precedes every not-yet-due item; due items sort by
// descending priority; not-due items sort by earliest next review. Equal
// keys keep catalog order. An empty category matches all items.
func (s *Store) SelectNext(count int, category string) []domain.Item {
	if count <= 0 {
		return nil
	}

	now := s.now()

	type candidate struct {
		item     domain.Item
		priority float64
		next     time.Time
	}

	s.mu.Lock()
	var due, pending []candidate
	for _, item := range s.items {
		if category != "" && item.Category != category {
			continue
		}
		record, err := s.getOrCreateLocked(item.ID)
		if err != nil {
			continue
		}
		c := candidate{item: item, next: record.NextReview}
		if s.srs.IsDue(record, now) {
			c.priority = s.srs.Priority(record, now)
			due = append(due, c)
		} else {
			pending = append(pending, c)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].priority > due[j].priority
	})
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].next.Before(pending[j].next)
	})

	selected := make([]domain.Item, 0, count)
	for _, c := range append(due, pending...) {
		if len(selected) == count {
			break
		}
		selected = append(selected, c.item)
	}
	return selected
}

// SelectDue returns all currently-due items in the filtered set, in catalog
// order. Callers that need priority ordering use SelectNext.
func (s *Store) SelectDue(category string) []domain.Item {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.Item
	for _, item := range s.items {
		if category != "" && item.Category != category {
			continue
		}
		record, err := s.getOrCreateLocked(item.ID)
		if err != nil {
			continue
		}
		if s.srs.IsDue(record, now) {
			due = append(due, item)
		}
	}
	return due
}

// Stats aggregates progress over the filtered item set.
func (s *Store) Stats(category string) srs.Summary {
	now := s.now()

	s.mu.Lock()
	records := make([]*domain.ReviewRecord, 0, len(s.items))
	for _, item := range s.items {
		if category != "" && item.Category != category {
			continue
		}
		record, err := s.getOrCreateLocked(item.ID)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	s.mu.Unlock()

	return s.srs.Summarize(records, now)
}

// Difficulty buckets an item's ease factor for presentation.
func (s *Store) Difficulty(itemID string) (srs.Difficulty, error) {
	record, err := s.GetRecord(itemID)
	if err != nil {
		return "", err
	}
	return s.srs.Difficulty(record), nil
}

// DifficultyOf buckets an already-loaded record without touching the store.
func (s *Store) DifficultyOf(record *domain.ReviewRecord) srs.Difficulty {
	return s.srs.Difficulty(record)
}

// ResetAll clears every record for this learner in this domain, both
// in-memory and, via the write queue, in the backing store.
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()
	s.records = make(map[string]*domain.ReviewRecord)
	backend := s.backend
	learnerID := s.learnerID
	s.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("resetting review progress")

	err := s.writer.Enqueue("delete_all", func(ctx context.Context) error {
		return backend.DeleteAll(ctx, learnerID, s.itemDomain)
	})
	if err != nil {
		log.Warn("failed to enqueue progress reset", slog.Any("error", err))
	}
}

// Rebind switches the persistence backing, e.g. from the local cache to the
// remote store after sign-in. It does not touch the in-memory map; callers
// pair it with Hydrate or Clear as appropriate.
func (s *Store) Rebind(backend store.RecordStore, learnerID uuid.UUID) {
	s.mu.Lock()
	s.backend = backend
	s.learnerID = learnerID
	s.mu.Unlock()
}

// Clear drops the in-memory map without touching the backend.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = make(map[string]*domain.ReviewRecord)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the in-memory records, keyed by item ID.
func (s *Store) Snapshot() map[string]*domain.ReviewRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]*domain.ReviewRecord, len(s.records))
	for id, record := range s.records {
		snapshot[id] = record.Clone()
	}
	return snapshot
}

// LearnerID returns the learner namespace currently bound to this store.
func (s *Store) LearnerID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learnerID
}

func (s *Store) backendSnapshot() store.RecordStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

// applyReview runs one review transition under the lock and schedules the
// durable write. Persistence failures never propagate to the caller.
func (s *Store) applyReview(ctx context.Context, itemID string, transition func(*domain.ReviewRecord, time.Time) (*domain.ReviewRecord, error)) (*domain.ReviewRecord, error) {
	now := s.now()

	s.mu.Lock()
	record, err := s.getOrCreateLocked(itemID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	updated, err := transition(record, now)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.records[itemID] = updated
	backend := s.backend
	learnerID := s.learnerID
	persisted := updated.Clone()
	s.mu.Unlock()

	err = s.writer.Enqueue("upsert", func(ctx context.Context) error {
		return backend.Upsert(ctx, learnerID, s.itemDomain, persisted)
	})
	if err != nil {
		// The in-memory state is already updated; the durable store stays
		// stale until the next successful write for this item.
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to enqueue record write",
			slog.String("item_id", itemID),
			slog.Any("error", err))
	}

	return updated.Clone(), nil
}

// getOrCreateLocked lazily materializes the initial record for a catalog
// item. Caller must hold s.mu.
func (s *Store) getOrCreateLocked(itemID string) (*domain.ReviewRecord, error) {
	if record, ok := s.records[itemID]; ok {
		return record, nil
	}

	if _, ok := s.itemIndex[itemID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}

	record, err := s.srs.NewRecord(itemID, s.now())
	if err != nil {
		return nil, err
	}
	s.records[itemID] = record
	return record, nil
}
