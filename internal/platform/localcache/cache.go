// Package localcache provides a Badger-backed implementation of the
// store.RecordStore interface. It is the on-device cache used while the
// learner is anonymous: one serialized collection of records per item
// domain, loaded whole and saved whole on change.
package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
)

// keyPrefix namespaces scheduler data inside the shared on-device database.
const keyPrefix = "srs"

// Config holds configuration for the local cache.
type Config struct {
	// Path is the directory for Badger files. Required unless InMemory.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for
	// testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives Badger's internal log output. If nil, Badger's
	// internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for on-device use.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration for tests: no disk I/O, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Cache is a Badger-backed store.RecordStore. Each (learner, item domain)
// pair maps to a single key holding the JSON-serialized record collection.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Ensure Cache implements store.RecordStore interface
var _ store.RecordStore = (*Cache)(nil)

// Open creates and opens the local cache with the given configuration.
// The caller must call Close when done.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.Default()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logger.With(slog.String("component", "localcache")),
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Upsert implements store.RecordStore.Upsert. The whole collection for the
// (learner, domain) key is read, amended, and written back in one
// transaction.
func (c *Cache) Upsert(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain, record *domain.ReviewRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	key := collectionKey(learnerID, itemDomain)

	return c.db.Update(func(txn *badger.Txn) error {
		records := c.readCollection(txn, key)
		records[record.ItemID] = record

		payload, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("encode record collection: %w", err)
		}

		return txn.Set(key, payload)
	})
}

// GetAll implements store.RecordStore.GetAll. A missing or corrupt payload
// yields an empty map rather than an error: the cache degrades to "no prior
// data" instead of failing startup.
func (c *Cache) GetAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) (map[string]*domain.ReviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := collectionKey(learnerID, itemDomain)

	var records map[string]*domain.ReviewRecord
	err := c.db.View(func(txn *badger.Txn) error {
		records = c.readCollection(txn, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read record collection: %w", err)
	}

	return records, nil
}

// DeleteAll implements store.RecordStore.DeleteAll.
func (c *Cache) DeleteAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := collectionKey(learnerID, itemDomain)

	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// readCollection loads and decodes the collection under key. Absent keys and
// undecodable payloads both come back as an empty collection; corruption is
// logged and treated as "no prior data".
func (c *Cache) readCollection(txn *badger.Txn, key []byte) map[string]*domain.ReviewRecord {
	records := make(map[string]*domain.ReviewRecord)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return records
	}
	if err != nil {
		c.logger.Warn("failed to read local record collection",
			slog.String("key", string(key)),
			slog.Any("error", err))
		return records
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &records)
	})
	if err != nil {
		c.logger.Warn("corrupt local record collection, starting empty",
			slog.String("key", string(key)),
			slog.Any("error", err))
		return make(map[string]*domain.ReviewRecord)
	}

	return records
}

func collectionKey(learnerID uuid.UUID, itemDomain domain.ItemDomain) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", keyPrefix, learnerID, itemDomain))
}
