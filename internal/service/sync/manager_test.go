package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/task"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	writer := task.NewWriter(task.WriterConfig{}, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = writer.Close(context.Background()) })

	manager, err := NewManager(ManagerConfig{
		Catalog: syncCatalog(),
		Local:   newMemStore(),
		Remote:  newMemStore(),
		Writer:  writer,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return manager
}

func TestNewManager_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewManager(ManagerConfig{Remote: newMemStore()})
	assert.ErrorIs(t, err, ErrNilLocalStore)

	_, err = NewManager(ManagerConfig{Local: newMemStore()})
	assert.ErrorIs(t, err, ErrNilRemoteStore)
}

func TestManager_SessionLifecycle(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)
	ctx := context.Background()

	session, err := manager.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, session.State())
	assert.Equal(t, 1, manager.Count())

	found, err := manager.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, found)

	_, err = manager.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, manager.Delete(session.ID()))
	assert.Zero(t, manager.Count())
	assert.ErrorIs(t, manager.Delete(session.ID()), ErrSessionNotFound)
}

func TestManager_PruneIdle(t *testing.T) {
	t.Parallel()

	writer := task.NewWriter(task.WriterConfig{}, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = writer.Close(context.Background()) })

	var mu stdsync.Mutex
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	manager, err := NewManager(ManagerConfig{
		Catalog: syncCatalog(),
		Local:   newMemStore(),
		Remote:  newMemStore(),
		Writer:  writer,
		Logger:  slog.New(slog.DiscardHandler),
		Now:     clock,
	})
	require.NoError(t, err)

	ctx := context.Background()
	stale, err := manager.Create(ctx)
	require.NoError(t, err)
	active, err := manager.Create(ctx)
	require.NoError(t, err)

	// Only one of the two sessions keeps making requests.
	advance(2 * time.Hour)
	_, err = manager.Get(active.ID())
	require.NoError(t, err)

	advance(30 * time.Minute)
	assert.Equal(t, 1, manager.PruneIdle(time.Hour), "only the untouched session is evicted")

	_, err = manager.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get(active.ID())
	assert.NoError(t, err, "a Get refreshes the idle clock")

	assert.Zero(t, manager.PruneIdle(0), "zero TTL disables pruning")
	assert.Equal(t, 1, manager.Count())
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)
	ctx := context.Background()

	first, err := manager.Create(ctx)
	require.NoError(t, err)
	second, err := manager.Create(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first.ID(), second.ID())

	// Progress in one anonymous session is invisible to another.
	store1, err := first.Store("words")
	require.NoError(t, err)
	_, err = store1.RecordOutcome(ctx, "w1", true, 0)
	require.NoError(t, err)

	store2, err := second.Store("words")
	require.NoError(t, err)
	record, err := store2.GetRecord("w1")
	require.NoError(t, err)
	assert.Equal(t, 0, record.Repetitions)
}
