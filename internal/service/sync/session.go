// Package sync coordinates review progress between the local cache and the
// remote store. An anonymous session reads and writes the local cache only;
// signing in migrates the accumulated local records to the remote store and
// rebinds every review store to it.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain/srs"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/logger"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/review"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/task"
)

// State describes where a session is in the sign-in lifecycle.
type State string

const (
	// StateAnonymous means progress lives in the local cache only.
	StateAnonymous State = "anonymous"
	// StateMigrating means a sign-in is copying local records to the
	// remote store. Review operations keep working against the in-memory
	// state while migration runs.
	StateMigrating State = "migrating"
	// StateAuthenticated means the session is bound to a learner account
	// and persists to the remote store.
	StateAuthenticated State = "authenticated"
)

var (
	// ErrUnknownDomain is returned when a session has no store for the
	// requested item domain.
	ErrUnknownDomain = errors.New("unknown item domain")

	// ErrMigrationInProgress is returned when a sign-in or sign-out races
	// an in-flight migration.
	ErrMigrationInProgress = errors.New("migration in progress")

	// ErrLearnerMismatch is returned when a session already bound to one
	// learner is asked to sign in as another. Callers sign out first.
	ErrLearnerMismatch = errors.New("session is bound to a different learner")

	// ErrNilLocalStore is returned when no local cache is configured.
	ErrNilLocalStore = errors.New("local store is required")

	// ErrNilRemoteStore is returned when no remote store is configured.
	ErrNilRemoteStore = errors.New("remote store is required")
)

// SessionConfig carries the dependencies for NewSession.
type SessionConfig struct {
	// SessionID namespaces this session's anonymous records in the local
	// cache. A zero value falls back to store.AnonymousLearnerID.
	SessionID uuid.UUID

	// Catalog is the full item list; NewSession partitions it by domain.
	Catalog []domain.Item

	// Local is the cache that holds anonymous progress.
	Local store.RecordStore

	// Remote is the durable store used after sign-in.
	Remote store.RecordStore

	// SRS overrides the scheduling service. Defaults to srs.NewDefaultService.
	SRS srs.Service

	// Writer is the shared write-behind queue.
	Writer *task.Writer

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Session owns one review store per item domain and moves all of them
// through the sign-in lifecycle together.
type Session struct {
	id     uuid.UUID
	local  store.RecordStore
	remote store.RecordStore
	stores map[domain.ItemDomain]*review.Store
	logger *slog.Logger

	mu        stdsync.Mutex
	state     State
	learnerID uuid.UUID
}

// NewSession builds an anonymous session over the catalog. Callers hydrate
// it before first use.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Local == nil {
		return nil, ErrNilLocalStore
	}
	if cfg.Remote == nil {
		return nil, ErrNilRemoteStore
	}
	if cfg.SessionID == uuid.Nil {
		cfg.SessionID = store.AnonymousLearnerID
	}
	if cfg.SRS == nil {
		cfg.SRS = srs.NewDefaultService()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	log := cfg.Logger.With(slog.String("component", "sync_session"))

	stores := make(map[domain.ItemDomain]*review.Store, len(domain.AllItemDomains()))
	for _, itemDomain := range domain.AllItemDomains() {
		reviewStore, err := review.New(review.Config{
			Domain:    itemDomain,
			Items:     cfg.Catalog,
			SRS:       cfg.SRS,
			Backend:   cfg.Local,
			LearnerID: cfg.SessionID,
			Writer:    cfg.Writer,
			Logger:    cfg.Logger,
			Now:       cfg.Now,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s store: %w", itemDomain, err)
		}
		stores[itemDomain] = reviewStore
	}

	return &Session{
		id:        cfg.SessionID,
		local:     cfg.Local,
		remote:    cfg.Remote,
		stores:    stores,
		logger:    log,
		state:     StateAnonymous,
		learnerID: cfg.SessionID,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LearnerID returns the learner the session is bound to. For anonymous
// sessions this is the session's local-cache namespace.
func (s *Session) LearnerID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learnerID
}

// Store returns the review store for an item domain.
func (s *Session) Store(itemDomain domain.ItemDomain) (*review.Store, error) {
	reviewStore, ok := s.stores[itemDomain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, itemDomain)
	}
	return reviewStore, nil
}

// Hydrate loads every domain's records from the current backing store.
func (s *Session) Hydrate(ctx context.Context) {
	for _, reviewStore := range s.stores {
		reviewStore.Hydrate(ctx)
	}
}

// SignIn migrates the session's local progress to the remote store under
// learnerID and rebinds every review store to it.
//
// The migration is a per-record upsert, so running it again after a partial
// failure is safe: records already copied are simply written again. On any
// upsert error the session stays anonymous and the local cache is left
// untouched so the sign-in can be retried. The local cache is only cleared
// once every record has landed remotely.
func (s *Session) SignIn(ctx context.Context, learnerID uuid.UUID) error {
	if learnerID == uuid.Nil {
		return errors.New("learner id is required")
	}

	s.mu.Lock()
	switch s.state {
	case StateMigrating:
		s.mu.Unlock()
		return ErrMigrationInProgress
	case StateAuthenticated:
		bound := s.learnerID
		s.mu.Unlock()
		if bound == learnerID {
			return nil
		}
		return fmt.Errorf("%w: signed in as %s", ErrLearnerMismatch, bound)
	}
	s.state = StateMigrating
	s.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()))
	log.Info("starting sign-in migration")

	migrated, err := s.migrate(ctx, learnerID)
	if err != nil {
		s.mu.Lock()
		s.state = StateAnonymous
		s.mu.Unlock()
		log.Warn("sign-in migration failed, local progress retained",
			slog.Int("migrated", migrated),
			slog.Any("error", err))
		return fmt.Errorf("migrating local records: %w", err)
	}

	// Remote now has everything; drop the local copies. A failure here is
	// harmless because re-migrating the leftovers is idempotent.
	for _, itemDomain := range domain.AllItemDomains() {
		if err := s.local.DeleteAll(ctx, s.id, itemDomain); err != nil {
			log.Warn("failed to clear migrated local records",
				slog.String("item_domain", string(itemDomain)),
				slog.Any("error", err))
		}
	}

	// Reconcile instead of a plain hydrate: reviews acknowledged while the
	// migration ran (or still sitting in the write queue) live only in the
	// in-memory map, and a wholesale replacement would drop them.
	for _, reviewStore := range s.stores {
		reviewStore.Rebind(s.remote, learnerID)
		reviewStore.Reconcile(ctx)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.learnerID = learnerID
	s.mu.Unlock()

	log.Info("sign-in migration complete", slog.Int("migrated", migrated))
	return nil
}

// migrate copies every record the local cache holds to the remote store. It
// stops at the first failure and reports how many records made it across.
//
// The local cache, not the in-memory map, is the migration source: the map
// also holds lazily materialized initial records for items that were merely
// browsed, and upserting those would overwrite the learner's real remote
// progress with blank state. The cache only ever holds reviewed records.
func (s *Session) migrate(ctx context.Context, learnerID uuid.UUID) (int, error) {
	migrated := 0
	for _, itemDomain := range domain.AllItemDomains() {
		records, err := s.local.GetAll(ctx, s.id, itemDomain)
		if err != nil {
			return migrated, fmt.Errorf("reading local %s records: %w", itemDomain, err)
		}
		for _, record := range records {
			if err := s.remote.Upsert(ctx, learnerID, itemDomain, record); err != nil {
				return migrated, fmt.Errorf("upserting %s/%s: %w", itemDomain, record.ItemID, err)
			}
			migrated++
		}
	}
	return migrated, nil
}

// SignOut detaches the session from the learner account. In-memory progress
// is dropped, every store rebinds to the local cache, and whatever anonymous
// records remain there are loaded back.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateMigrating:
		s.mu.Unlock()
		return ErrMigrationInProgress
	case StateAnonymous:
		s.mu.Unlock()
		return nil
	}
	s.state = StateAnonymous
	s.learnerID = s.id
	s.mu.Unlock()

	for _, reviewStore := range s.stores {
		reviewStore.Clear()
		reviewStore.Rebind(s.local, s.id)
		reviewStore.Hydrate(ctx)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("signed out")
	return nil
}
