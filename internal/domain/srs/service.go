package srs

import (
	"errors"
	"time"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
)

// Common errors
var (
	ErrNilRecord = errors.New("review record cannot be nil")
)

// Service defines the interface for SRS algorithm operations. It wraps the
// pure functions of this package with input validation and a single set of
// parameters.
type Service interface {
	// NewRecord returns the initial review state for an item.
	NewRecord(itemID string, now time.Time) (*domain.ReviewRecord, error)

	// NextState computes new state from an explicit 0..5 quality value.
	NextState(record *domain.ReviewRecord, quality int, now time.Time) (*domain.ReviewRecord, error)

	// NextStateFromOutcome computes new state from a binary correctness
	// signal with optional response latency (non-positive = no timing).
	NextStateFromOutcome(record *domain.ReviewRecord, correct bool, responseTime time.Duration, now time.Time) (*domain.ReviewRecord, error)

	// IsDue reports whether the record is due at the given time.
	IsDue(record *domain.ReviewRecord, now time.Time) bool

	// Priority scores the record for review ordering; higher sorts first.
	Priority(record *domain.ReviewRecord, now time.Time) float64

	// Summarize aggregates progress over a set of records.
	Summarize(records []*domain.ReviewRecord, now time.Time) Summary

	// Difficulty buckets the record's ease factor for presentation.
	Difficulty(record *domain.ReviewRecord) Difficulty
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

func (s *defaultService) NewRecord(itemID string, now time.Time) (*domain.ReviewRecord, error) {
	return domain.NewReviewRecord(itemID, now)
}

func (s *defaultService) NextState(record *domain.ReviewRecord, quality int, now time.Time) (*domain.ReviewRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	return NextState(record, quality, now, s.params), nil
}

func (s *defaultService) NextStateFromOutcome(record *domain.ReviewRecord, correct bool, responseTime time.Duration, now time.Time) (*domain.ReviewRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	quality := QualityFromOutcome(correct, responseTime, s.params)
	return NextState(record, quality, now, s.params), nil
}

func (s *defaultService) IsDue(record *domain.ReviewRecord, now time.Time) bool {
	return IsDue(record, now)
}

func (s *defaultService) Priority(record *domain.ReviewRecord, now time.Time) float64 {
	return Priority(record, now, s.params)
}

func (s *defaultService) Summarize(records []*domain.ReviewRecord, now time.Time) Summary {
	return Summarize(records, now, s.params)
}

func (s *defaultService) Difficulty(record *domain.ReviewRecord) Difficulty {
	return DifficultyOf(record, s.params)
}
