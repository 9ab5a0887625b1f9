package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record, err := NewReviewRecord("w1", now)
	require.NoError(t, err)

	assert.Equal(t, "w1", record.ItemID)
	assert.Equal(t, 2.5, record.EaseFactor)
	assert.Equal(t, 0, record.Interval)
	assert.Equal(t, 0, record.Repetitions)
	assert.True(t, record.LastReview.IsZero(), "new records have never been reviewed")
	assert.Equal(t, now, record.NextReview, "new records are due immediately")
	assert.Equal(t, 0, record.CorrectCount)
	assert.Equal(t, 0, record.IncorrectCount)
}

func TestNewReviewRecord_EmptyItemID(t *testing.T) {
	t.Parallel()

	_, err := NewReviewRecord("", time.Now().UTC())
	assert.ErrorIs(t, err, ErrEmptyRecordItemID)
}

func TestReviewRecordValidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	testCases := []struct {
		name    string
		mutate  func(r *ReviewRecord)
		wantErr error
	}{
		{
			name:    "valid record",
			mutate:  func(r *ReviewRecord) {},
			wantErr: nil,
		},
		{
			name:    "empty item ID",
			mutate:  func(r *ReviewRecord) { r.ItemID = "" },
			wantErr: ErrEmptyRecordItemID,
		},
		{
			name:    "negative interval",
			mutate:  func(r *ReviewRecord) { r.Interval = -1 },
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "ease factor below floor",
			mutate:  func(r *ReviewRecord) { r.EaseFactor = 1.2 },
			wantErr: ErrInvalidEaseFactor,
		},
		{
			name:    "negative repetitions",
			mutate:  func(r *ReviewRecord) { r.Repetitions = -2 },
			wantErr: ErrInvalidRepetition,
		},
		{
			name:    "negative incorrect count",
			mutate:  func(r *ReviewRecord) { r.IncorrectCount = -1 },
			wantErr: ErrNegativeCount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			record, err := NewReviewRecord("w1", now)
			require.NoError(t, err)
			tc.mutate(record)

			err = record.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestReviewRecordClone(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	record, err := NewReviewRecord("w1", now)
	require.NoError(t, err)

	clone := record.Clone()
	clone.Repetitions = 7
	clone.EaseFactor = 1.9

	assert.Equal(t, 0, record.Repetitions, "mutating the clone must not touch the original")
	assert.Equal(t, 2.5, record.EaseFactor)
}

func TestItemValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		item    Item
		wantErr error
	}{
		{
			name:    "valid word item",
			item:    Item{ID: "w1", Domain: ItemDomainWords, Category: "food", Level: 1},
			wantErr: nil,
		},
		{
			name:    "valid verb item without category",
			item:    Item{ID: "v9", Domain: ItemDomainVerbs, Level: 2},
			wantErr: nil,
		},
		{
			name:    "empty ID",
			item:    Item{Domain: ItemDomainPhrases, Level: 1},
			wantErr: ErrEmptyItemID,
		},
		{
			name:    "unknown domain",
			item:    Item{ID: "x1", Domain: ItemDomain("idioms"), Level: 1},
			wantErr: ErrInvalidItemDomain,
		},
		{
			name:    "zero level",
			item:    Item{ID: "w2", Domain: ItemDomainWords, Level: 0},
			wantErr: ErrInvalidItemLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.item.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestItemDomainIsValid(t *testing.T) {
	t.Parallel()

	for _, d := range AllItemDomains() {
		assert.True(t, d.IsValid(), "domain %q should be valid", d)
	}
	assert.False(t, ItemDomain("").IsValid())
	assert.False(t, ItemDomain("grammar").IsValid())
}
