package srs

import "time"

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// Core limits
	MinEaseFactor     float64
	DefaultEaseFactor float64

	// Quality scale. Reviews at or above PassThreshold count as successful
	// recall; anything below resets the repetition streak.
	MinQuality    int
	MaxQuality    int
	PassThreshold int

	// Interval ladder for the first two successful reviews, in days.
	FirstInterval  int
	SecondInterval int

	// Failed items come back within the session after this many minutes.
	AgainReviewMinutes int

	// Latency cutoffs for inferring quality from a binary outcome.
	FastAnswer time.Duration
	SlowAnswer time.Duration

	// Mastery thresholds used by Summarize.
	MasteredRepetitions int
	MasteredEaseFactor  float64

	// Difficulty bucketing cutoffs over ease factor.
	EasyEaseFactor   float64
	MediumEaseFactor float64

	// Priority score weights.
	OverdueWeight   float64
	EaseWeight      float64
	PracticeWeight  float64
	ErrorRateWeight float64
	PracticeTarget  int
}

// ParamsConfig allows overriding select defaults when creating Params.
// Zero values leave the corresponding default untouched.
type ParamsConfig struct {
	AgainReviewMinutes  int
	FirstInterval       int
	SecondInterval      int
	MasteredRepetitions int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// defaults and the scheduling weights used across the product.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		DefaultEaseFactor: 2.5,

		MinQuality:    0,
		MaxQuality:    5,
		PassThreshold: 3,

		FirstInterval:  1,
		SecondInterval: 3,

		AgainReviewMinutes: 10,

		FastAnswer: 2 * time.Second,
		SlowAnswer: 4 * time.Second,

		MasteredRepetitions: 5,
		MasteredEaseFactor:  2.0,

		EasyEaseFactor:   2.3,
		MediumEaseFactor: 1.8,

		OverdueWeight:   10,
		EaseWeight:      5,
		PracticeWeight:  2,
		ErrorRateWeight: 10,
		PracticeTarget:  5,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.AgainReviewMinutes > 0 {
		params.AgainReviewMinutes = config.AgainReviewMinutes
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.MasteredRepetitions > 0 {
		params.MasteredRepetitions = config.MasteredRepetitions
	}

	return params
}
