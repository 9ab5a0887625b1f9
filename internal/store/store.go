// Package store defines interfaces for review-record persistence.
// These interfaces abstract the underlying storage mechanism from the
// scheduling logic, allowing the same review store to run against the
// local on-device cache or the remote durable store.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
)

// AnonymousLearnerID is the namespace used for records accumulated before
// the learner has an authenticated identity.
var AnonymousLearnerID = uuid.Nil

// RecordStore defines the interface for review-record persistence.
// Implementations must treat (learnerID, itemDomain, record.ItemID) as the
// unique key and apply last-write-wins semantics on Upsert.
type RecordStore interface {
	// Upsert inserts or overwrites the record for its key.
	// The operation is atomic per record and idempotent: re-upserting the
	// same record produces the same stored state.
	Upsert(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain, record *domain.ReviewRecord) error

	// GetAll fetches every record for the learner in the given item domain,
	// keyed by item ID. A learner with no records gets an empty map, not an
	// error.
	GetAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) (map[string]*domain.ReviewRecord, error)

	// DeleteAll removes every record for the learner in the given item
	// domain. Deleting an empty collection is not an error.
	DeleteAll(ctx context.Context, learnerID uuid.UUID, itemDomain domain.ItemDomain) error
}
