// Package scheduler computes review timing. Spaced mode uses an SM-2
// derived formula; scheduled mode walks a fixed interval pattern. All
// functions are pure: no I/O, no hidden state.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

// Ease factor bounds and per-rating adjustments.
const (
	EaseMin     = 1.3
	EaseMax     = 3.0
	EaseDefault = 2.5

	easeDecreasePoor      = 0.2
	easeDecreaseFair      = 0.15
	easeIncreaseExcellent = 0.15

	// Rating 4 multiplies the interval by a flat 2.5 regardless of
	// ease; the raised ease shows up on subsequent reviews instead.
	excellentMultiplier = 2.5
)

// Result is the outcome of one scheduling computation.
type Result struct {
	NextReview   time.Time
	IntervalDays int
	EaseFactor   float64
}

// NextSpaced applies the SM-2 derived update for a spaced-mode note.
// Interval is clamped to at least one day and ease to [EaseMin, EaseMax]
// on every update.
func NextSpaced(rating domain.Rating, intervalDays int, easeFactor float64, now time.Time) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	newEase := easeFactor
	var newInterval int

	switch rating {
	case domain.Poor:
		newEase = easeFactor - easeDecreasePoor
		newInterval = 1
	case domain.Fair:
		newEase = easeFactor - easeDecreaseFair
		newInterval = int(math.Round(float64(intervalDays) / 2))
	case domain.Good:
		newInterval = int(math.Round(float64(intervalDays) * easeFactor))
	case domain.Excellent:
		newEase = easeFactor + easeIncreaseExcellent
		newInterval = int(math.Round(float64(intervalDays) * excellentMultiplier))
	}

	newEase = clampEase(newEase)
	if newInterval < 1 {
		newInterval = 1
	}

	return Result{
		NextReview:   now.AddDate(0, 0, newInterval),
		IntervalDays: newInterval,
		EaseFactor:   newEase,
	}, nil
}

// NextScheduled advances a scheduled-mode note through its pattern.
// The rating is validated but does not influence the cadence, and the
// ease factor passes through unmodified. reviewCount is the number of
// reviews completed before this one; the pattern's last interval repeats
// once exhausted.
func NextScheduled(rating domain.Rating, pattern string, reviewCount int, easeFactor float64, now time.Time) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	intervals := ParsePattern(pattern)
	idx := reviewCount
	if idx >= len(intervals) {
		idx = len(intervals) - 1
	}
	if idx < 0 {
		idx = 0
	}
	interval := intervals[idx]

	return Result{
		NextReview:   now.AddDate(0, 0, interval),
		IntervalDays: interval,
		EaseFactor:   easeFactor,
	}, nil
}

// Next dispatches on the note's review mode.
func Next(mode domain.ReviewMode, rating domain.Rating, intervalDays int, easeFactor float64, pattern string, reviewCount int, now time.Time) (Result, error) {
	if mode == domain.ModeScheduled {
		return NextScheduled(rating, pattern, reviewCount, easeFactor, now)
	}
	return NextSpaced(rating, intervalDays, easeFactor, now)
}

func clampEase(ease float64) float64 {
	if ease < EaseMin {
		return EaseMin
	}
	if ease > EaseMax {
		return EaseMax
	}
	return ease
}
