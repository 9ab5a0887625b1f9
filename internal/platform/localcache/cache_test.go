package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, cache.Close())
	})

	return cache
}

func newCacheRecord(t *testing.T, itemID string) *domain.ReviewRecord {
	t.Helper()

	record, err := domain.NewReviewRecord(itemID, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return record
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	first := newCacheRecord(t, "w1")
	second := newCacheRecord(t, "w2")
	second.Repetitions = 3
	second.Interval = 7

	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, first))
	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, second))

	records, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records["w2"].Repetitions)
	assert.Equal(t, 7, records["w2"].Interval)
}

func TestCacheUpsert_Overwrites(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	record := newCacheRecord(t, "w1")
	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, record))

	updated := record.Clone()
	updated.Repetitions = 4
	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, updated))

	records, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records["w1"].Repetitions)
}

func TestCacheDomainsAreIsolated(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, newCacheRecord(t, "w1")))
	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainVerbs, newCacheRecord(t, "v1")))

	words, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	verbs, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainVerbs)
	require.NoError(t, err)

	assert.Len(t, words, 1)
	assert.Len(t, verbs, 1)
	assert.Contains(t, words, "w1")
	assert.Contains(t, verbs, "v1")
}

func TestCacheGetAll_EmptyCollection(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)

	records, err := cache.GetAll(context.Background(), store.AnonymousLearnerID, domain.ItemDomainPhrases)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCacheGetAll_CorruptPayload(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	// Write garbage directly under the collection key.
	key := collectionKey(store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, cache.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte("{not json"))
	}))

	// Corruption degrades to "no prior data" rather than failing.
	records, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	assert.Empty(t, records)

	// A subsequent upsert starts a fresh collection.
	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, newCacheRecord(t, "w1")))
	records, err = cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCacheDeleteAll(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, store.AnonymousLearnerID, domain.ItemDomainWords, newCacheRecord(t, "w1")))
	require.NoError(t, cache.DeleteAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords))

	records, err := cache.GetAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting an already-empty collection is not an error.
	require.NoError(t, cache.DeleteAll(ctx, store.AnonymousLearnerID, domain.ItemDomainWords))
}

func TestCacheUpsert_InvalidRecord(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)

	record := newCacheRecord(t, "w1")
	record.EaseFactor = 0.5

	err := cache.Upsert(context.Background(), store.AnonymousLearnerID, domain.ItemDomainWords, record)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{})
	assert.Error(t, err)
}
