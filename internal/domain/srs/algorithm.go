package srs

import (
	"math"
	"time"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
)

// clampQuality forces a quality value into the supported scale. Out-of-range
// values from callers would otherwise distort the ease-factor formula.
func clampQuality(quality int, params *Params) int {
	if quality < params.MinQuality {
		return params.MinQuality
	}
	if quality > params.MaxQuality {
		return params.MaxQuality
	}
	return quality
}

// calculateEaseFactor applies the standard SM-2 ease adjustment for the given
// review quality: quality 5 raises ease slightly, quality 3 lowers it
// slightly, and failed recalls lower it more. The result never drops below
// params.MinEaseFactor.
func calculateEaseFactor(currentEF float64, quality int, params *Params) float64 {
	missed := float64(params.MaxQuality - quality)
	newEF := currentEF + (0.1 - missed*(0.08+missed*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateInterval determines the next interval in days.
//
// Failed recalls reset the interval to 0 so the item reappears within the
// session. Successful recalls walk the ladder: first success one day, second
// success three days, then the current interval scaled by the ease factor.
func calculateInterval(currentInterval, repetitions int, easeFactor float64, quality int, params *Params) int {
	if quality < params.PassThreshold {
		return 0
	}

	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * easeFactor))
	}
}

// NextState computes the record's state after a review of the given quality.
// It follows immutability principles: the input record is not modified and a
// new record is returned. Quality is clamped to the supported scale at this
// boundary.
func NextState(record *domain.ReviewRecord, quality int, now time.Time, params *Params) *domain.ReviewRecord {
	quality = clampQuality(quality, params)

	next := record.Clone()

	if quality >= params.PassThreshold {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}

	// Interval uses the pre-review ease factor; the ease adjustment below
	// only affects subsequent reviews. This matches SM-2 ordering.
	next.Interval = calculateInterval(record.Interval, record.Repetitions, record.EaseFactor, quality, params)

	if quality < params.PassThreshold {
		next.Repetitions = 0
	} else {
		next.Repetitions = record.Repetitions + 1
	}

	next.EaseFactor = calculateEaseFactor(record.EaseFactor, quality, params)

	next.LastReview = now
	if next.Interval == 0 {
		next.NextReview = now.Add(time.Duration(params.AgainReviewMinutes) * time.Minute)
	} else {
		next.NextReview = now.AddDate(0, 0, next.Interval)
	}
	next.UpdatedAt = now

	return next
}

// QualityFromOutcome maps a binary correctness signal, optionally with
// response latency, onto the 0..5 quality scale. A non-positive responseTime
// means no timing information is available.
func QualityFromOutcome(correct bool, responseTime time.Duration, params *Params) int {
	if !correct {
		return 1
	}

	switch {
	case responseTime <= 0:
		return 4
	case responseTime < params.FastAnswer:
		return 5
	case responseTime < params.SlowAnswer:
		return 4
	default:
		return 3
	}
}

// IsDue reports whether the record should be reviewed at the given time.
func IsDue(record *domain.ReviewRecord, now time.Time) bool {
	return !now.Before(record.NextReview)
}

// Priority scores a record for review ordering. Higher scores are reviewed
// sooner. The score combines how overdue the item is, how hard it is, how
// little it has been practiced, and its lifetime error rate. The score is
// never persisted.
func Priority(record *domain.ReviewRecord, now time.Time, params *Params) float64 {
	overdueDays := now.Sub(record.NextReview).Hours() / 24
	if overdueDays < 0 {
		overdueDays = 0
	}

	practiceGap := float64(params.PracticeTarget - record.Repetitions)
	if practiceGap < 0 {
		practiceGap = 0
	}

	total := record.CorrectCount + record.IncorrectCount
	if total < 1 {
		total = 1
	}
	errorRate := float64(record.IncorrectCount) / float64(total)

	return overdueDays*params.OverdueWeight +
		(params.DefaultEaseFactor-record.EaseFactor)*params.EaseWeight +
		practiceGap*params.PracticeWeight +
		errorRate*params.ErrorRateWeight
}

// SelectDue filters records down to those due at the given time. The input
// order is preserved; callers re-sort by Priority as needed.
func SelectDue(records []*domain.ReviewRecord, now time.Time) []*domain.ReviewRecord {
	var due []*domain.ReviewRecord
	for _, record := range records {
		if IsDue(record, now) {
			due = append(due, record)
		}
	}
	return due
}

// Summary aggregates a learner's progress over a set of records.
type Summary struct {
	DueNow   int `json:"due_now"`
	Learning int `json:"learning"`
	Mastered int `json:"mastered"`
}

// Summarize computes aggregate progress statistics. An item counts as
// mastered once it has a sustained streak and its ease factor has not
// collapsed; everything else is still being learned.
func Summarize(records []*domain.ReviewRecord, now time.Time, params *Params) Summary {
	var summary Summary
	for _, record := range records {
		if IsDue(record, now) {
			summary.DueNow++
		}
		if record.Repetitions >= params.MasteredRepetitions && record.EaseFactor >= params.MasteredEaseFactor {
			summary.Mastered++
		} else {
			summary.Learning++
		}
	}
	return summary
}

// Difficulty is a presentation bucket over the ease factor. It is not used
// by scheduling itself.
type Difficulty string

// Difficulty buckets.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyOf buckets a record's ease factor for presentation.
func DifficultyOf(record *domain.ReviewRecord, params *Params) Difficulty {
	switch {
	case record.EaseFactor >= params.EasyEaseFactor:
		return DifficultyEasy
	case record.EaseFactor >= params.MediumEaseFactor:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
