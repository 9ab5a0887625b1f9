package domain

import (
	"errors"
	"time"
)

// Common validation errors for ReviewRecord
var (
	ErrEmptyRecordItemID = errors.New("review record item ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be greater than or equal to 1.3")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
	ErrNegativeCount     = errors.New("review counters cannot be negative")
)

// ReviewRecord tracks a learner's spaced repetition state for a single item.
// It follows the SM-2 model: an ease factor that adapts to review quality and
// an interval in days that grows with consecutive successful recalls.
type ReviewRecord struct {
	ItemID         string    `json:"item_id"`
	EaseFactor     float64   `json:"ease_factor"`     // Difficulty multiplier, clamped to >= 1.3
	Interval       int       `json:"interval"`        // Days until next review; 0 = again this session
	Repetitions    int       `json:"repetitions"`     // Consecutive successful reviews since last failure
	LastReview     time.Time `json:"last_review"`     // Zero time means never reviewed
	NextReview     time.Time `json:"next_review"`     // Item is due at or after this time
	CorrectCount   int       `json:"correct_count"`   // Lifetime successful reviews
	IncorrectCount int       `json:"incorrect_count"` // Lifetime failed reviews
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewReviewRecord creates the initial review state for an item.
// New items are due immediately so they enter the review rotation right away.
func NewReviewRecord(itemID string, now time.Time) (*ReviewRecord, error) {
	record := &ReviewRecord{
		ItemID:      itemID,
		EaseFactor:  2.5, // Default SM-2 ease factor
		Interval:    0,
		Repetitions: 0,
		LastReview:  time.Time{},
		NextReview:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Clone returns a copy of the record. Records handed to asynchronous
// persistence must be cloned so in-memory mutations cannot race the write.
func (r *ReviewRecord) Clone() *ReviewRecord {
	clone := *r
	return &clone
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.ItemID == "" {
		return ErrEmptyRecordItemID
	}

	if r.Interval < 0 {
		return ErrInvalidInterval
	}

	if r.EaseFactor < 1.3 {
		return ErrInvalidEaseFactor
	}

	if r.Repetitions < 0 {
		return ErrInvalidRepetition
	}

	if r.CorrectCount < 0 || r.IncorrectCount < 0 {
		return ErrNegativeCount
	}

	return nil
}
