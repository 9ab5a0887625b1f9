package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Equal(t, 2.5, params.DefaultEaseFactor)
	assert.Equal(t, 3, params.PassThreshold)
	assert.Equal(t, 1, params.FirstInterval)
	assert.Equal(t, 3, params.SecondInterval)
	assert.Equal(t, 10, params.AgainReviewMinutes)
	assert.Equal(t, 2*time.Second, params.FastAnswer)
	assert.Equal(t, 4*time.Second, params.SlowAnswer)
	assert.Equal(t, 5, params.MasteredRepetitions)
	assert.Equal(t, 2.0, params.MasteredEaseFactor)
}

func TestNewParams_Overrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		AgainReviewMinutes:  5,
		MasteredRepetitions: 8,
	})

	assert.Equal(t, 5, params.AgainReviewMinutes)
	assert.Equal(t, 8, params.MasteredRepetitions)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1, params.FirstInterval)
	assert.Equal(t, 3, params.SecondInterval)
	assert.Equal(t, 1.3, params.MinEaseFactor)
}

func TestNewParams_ZeroConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NewDefaultParams(), NewParams(ParamsConfig{}))
}
