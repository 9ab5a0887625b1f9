package api

import (
	"time"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain/srs"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/sync"
)

// SessionResponse represents a sync session's visible state.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	LearnerID string `json:"learner_id,omitempty"`
}

// ItemResponse represents one catalog item offered for review.
type ItemResponse struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	Category string `json:"category,omitempty"`
	Level    int    `json:"level"`
}

// RecordResponse represents the review state of one item.
type RecordResponse struct {
	ItemID         string     `json:"item_id"`
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	LastReview     *time.Time `json:"last_review,omitempty"`
	NextReview     time.Time  `json:"next_review"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	Difficulty     string     `json:"difficulty"`
}

// OutcomeRequest represents the body for recording a timed answer.
type OutcomeRequest struct {
	Correct   *bool `json:"correct" validate:"required"`
	LatencyMs int64 `json:"latency_ms" validate:"min=0"`
}

// QualityRequest represents the body for recording an explicit SM-2 grade.
type QualityRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// StatsResponse represents aggregate progress for a domain.
type StatsResponse struct {
	Domain   string `json:"domain"`
	Category string `json:"category,omitempty"`
	DueNow   int    `json:"due_now"`
	Learning int    `json:"learning"`
	Mastered int    `json:"mastered"`
}

func sessionToResponse(session *sync.Session) SessionResponse {
	resp := SessionResponse{
		SessionID: session.ID().String(),
		State:     string(session.State()),
	}
	if session.State() == sync.StateAuthenticated {
		resp.LearnerID = session.LearnerID().String()
	}
	return resp
}

func itemToResponse(item domain.Item) ItemResponse {
	return ItemResponse{
		ID:       item.ID,
		Domain:   string(item.Domain),
		Category: item.Category,
		Level:    item.Level,
	}
}

func itemsToResponse(items []domain.Item) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemToResponse(item))
	}
	return responses
}

func recordToResponse(record *domain.ReviewRecord, difficulty srs.Difficulty) RecordResponse {
	resp := RecordResponse{
		ItemID:         record.ItemID,
		EaseFactor:     record.EaseFactor,
		Interval:       record.Interval,
		Repetitions:    record.Repetitions,
		NextReview:     record.NextReview,
		CorrectCount:   record.CorrectCount,
		IncorrectCount: record.IncorrectCount,
		Difficulty:     string(difficulty),
	}
	if !record.LastReview.IsZero() {
		lastReview := record.LastReview
		resp.LastReview = &lastReview
	}
	return resp
}
