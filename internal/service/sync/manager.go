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
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/task"
)

// ErrSessionNotFound is returned when no session exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// ManagerConfig carries the shared dependencies every session is built from.
type ManagerConfig struct {
	Catalog []domain.Item
	Local   store.RecordStore
	Remote  store.RecordStore
	SRS     srs.Service
	Writer  *task.Writer
	Logger  *slog.Logger
	Now     func() time.Time
}

// Manager creates and tracks sync sessions for the HTTP layer. Each session
// gets a fresh ID that doubles as its anonymous namespace in the local cache.
// Sessions that go quiet are reclaimed through PruneIdle; their persisted
// records stay in the local cache under the session ID.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger
	now    func() time.Time

	mu       stdsync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
}

// sessionEntry pairs a session with the last time a request touched it.
type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// NewManager validates the shared dependencies and returns an empty manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Local == nil {
		return nil, ErrNilLocalStore
	}
	if cfg.Remote == nil {
		return nil, ErrNilRemoteStore
	}
	if cfg.SRS == nil {
		cfg.SRS = srs.NewDefaultService()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.With(slog.String("component", "sync_manager")),
		now:      now,
		sessions: make(map[uuid.UUID]*sessionEntry),
	}, nil
}

// Create starts a new anonymous session, hydrates it from the local cache,
// and registers it.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	session, err := NewSession(SessionConfig{
		SessionID: uuid.New(),
		Catalog:   m.cfg.Catalog,
		Local:     m.cfg.Local,
		Remote:    m.cfg.Remote,
		SRS:       m.cfg.SRS,
		Writer:    m.cfg.Writer,
		Logger:    m.cfg.Logger,
		Now:       m.cfg.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	session.Hydrate(ctx)

	m.mu.Lock()
	m.sessions[session.ID()] = &sessionEntry{session: session, lastSeen: m.now()}
	m.mu.Unlock()

	m.logger.Info("session created", slog.String("session_id", session.ID().String()))
	return session, nil
}

// Get looks up a session by ID and marks it as active.
func (m *Manager) Get(sessionID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[sessionID]
	if ok {
		entry.lastSeen = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete drops a session from the registry. The session's records stay in
// whichever store they were last persisted to.
func (m *Manager) Delete(sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneIdle drops every session that has not been touched within maxIdle
// and reports how many were removed. A maxIdle of zero disables pruning.
// Anonymous progress survives eviction: reviewed records are already in the
// local cache under the session ID, so presenting the same X-Session-ID
// later simply gets ErrSessionNotFound and the client starts a new session.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	var pruned []uuid.UUID
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			pruned = append(pruned, id)
		}
	}
	m.mu.Unlock()

	for _, id := range pruned {
		m.logger.Info("idle session pruned", slog.String("session_id", id.String()))
	}
	return len(pruned)
}
