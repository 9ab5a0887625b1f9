package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: nil,
		},
		{
			name:     "no rows maps to not found",
			err:      pgx.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "wrapped no rows maps to not found",
			err:      fmt.Errorf("query failed: %w", pgx.ErrNoRows),
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			err:      &pgconn.PgError{Code: uniqueViolationCode},
			expected: store.ErrDuplicate,
		},
		{
			name:     "check violation maps to invalid entity",
			err:      &pgconn.PgError{Code: checkViolationCode, ConstraintName: "review_records_ease_factor_check"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to invalid entity",
			err:      &pgconn.PgError{Code: notNullViolationCode, ColumnName: "item_id"},
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)
			if tc.expected == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}
}

func TestMapError_PassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	base := errors.New("connection refused")
	assert.Same(t, base, MapError(base))
}
