// Package postgres provides PostgreSQL implementations of the store
// interfaces using pgx. It is the remote durable store: the arbitration
// point for a learner's records across devices, with last-write-wins
// semantics per record.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
)

// DBTX is the subset of pgx operations the stores need. It is implemented
// by *pgxpool.Pool and pgx.Tx, allowing store methods to run either on the
// pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordStore implements the store.RecordStore interface using a PostgreSQL
// database as the storage backend.
type RecordStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewRecordStore creates a new PostgreSQL implementation of the
// store.RecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewRecordStore(db DBTX, logger *slog.Logger) *RecordStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// Ensure RecordStore implements store.RecordStore interface
var _ store.RecordStore = (*RecordStore)(nil)

// Upsert implements store.RecordStore.Upsert.
// An existing record for the same (learner, domain, item) key is
// overwritten; the upsert is idempotent per key.
func (s *RecordStore) Upsert(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain, record *domain.ReviewRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_records (
			learner_id, item_domain, item_id,
			ease_factor, interval_days, repetitions,
			last_review_at, next_review_at,
			correct_count, incorrect_count,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (learner_id, item_domain, item_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			last_review_at = EXCLUDED.last_review_at,
			next_review_at = EXCLUDED.next_review_at,
			correct_count = EXCLUDED.correct_count,
			incorrect_count = EXCLUDED.incorrect_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.Exec(ctx, query,
		learnerID,
		string(itemDomain),
		record.ItemID,
		record.EaseFactor,
		record.Interval,
		record.Repetitions,
		nullableTime(record.LastReview),
		record.NextReview,
		record.CorrectCount,
		record.IncorrectCount,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to upsert review record",
			slog.String("learner_id", learnerID.String()),
			slog.String("item_domain", string(itemDomain)),
			slog.String("item_id", record.ItemID),
			slog.Any("error", err))
		return MapError(err)
	}

	return nil
}

// GetAll implements store.RecordStore.GetAll.
// A learner with no records gets an empty map.
func (s *RecordStore) GetAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) (map[string]*domain.ReviewRecord, error) {
	query := `
		SELECT item_id, ease_factor, interval_days, repetitions,
		       last_review_at, next_review_at,
		       correct_count, incorrect_count,
		       created_at, updated_at
		FROM review_records
		WHERE learner_id = $1 AND item_domain = $2
	`

	rows, err := s.db.Query(ctx, query, learnerID, string(itemDomain))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	records := make(map[string]*domain.ReviewRecord)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records[record.ItemID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// DeleteAll implements store.RecordStore.DeleteAll.
func (s *RecordStore) DeleteAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) error {
	query := `DELETE FROM review_records WHERE learner_id = $1 AND item_domain = $2`

	tag, err := s.db.Exec(ctx, query, learnerID, string(itemDomain))
	if err != nil {
		s.logger.Error("failed to delete review records",
			slog.String("learner_id", learnerID.String()),
			slog.String("item_domain", string(itemDomain)),
			slog.Any("error", err))
		return MapError(err)
	}

	s.logger.Debug("deleted review records",
		slog.String("learner_id", learnerID.String()),
		slog.String("item_domain", string(itemDomain)),
		slog.Int64("rows", tag.RowsAffected()))
	return nil
}

// scanRecord reads one review_records row. last_review_at is nullable for
// records that were created but never reviewed.
func scanRecord(rows pgx.Rows) (*domain.ReviewRecord, error) {
	var record domain.ReviewRecord
	var lastReview *time.Time

	err := rows.Scan(
		&record.ItemID,
		&record.EaseFactor,
		&record.Interval,
		&record.Repetitions,
		&lastReview,
		&record.NextReview,
		&record.CorrectCount,
		&record.IncorrectCount,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReview != nil {
		record.LastReview = *lastReview
	}

	return &record, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
