package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

func TestNextSpaced(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name             string
		rating           domain.Rating
		intervalDays     int
		easeFactor       float64
		expectedInterval int
		expectedEase     float64
	}{
		{
			name:             "good multiplies interval by ease",
			rating:           domain.Good,
			intervalDays:     6,
			easeFactor:       2.5,
			expectedInterval: 15,
			expectedEase:     2.5,
		},
		{
			name:             "poor resets interval and lowers ease",
			rating:           domain.Poor,
			intervalDays:     10,
			easeFactor:       1.4,
			expectedInterval: 1,
			expectedEase:     1.3,
		},
		{
			name:             "fair halves interval",
			rating:           domain.Fair,
			intervalDays:     10,
			easeFactor:       2.0,
			expectedInterval: 5,
			expectedEase:     1.85,
		},
		{
			name:             "fair never drops below one day",
			rating:           domain.Fair,
			intervalDays:     1,
			easeFactor:       2.0,
			expectedInterval: 1,
			expectedEase:     1.85,
		},
		{
			name:             "excellent uses flat 2.5 multiplier",
			rating:           domain.Excellent,
			intervalDays:     4,
			easeFactor:       2.0,
			expectedInterval: 10,
			expectedEase:     2.15,
		},
		{
			name:             "poor at minimum ease stays clamped",
			rating:           domain.Poor,
			intervalDays:     5,
			easeFactor:       1.3,
			expectedInterval: 1,
			expectedEase:     1.3,
		},
		{
			name:             "excellent at maximum ease stays clamped",
			rating:           domain.Excellent,
			intervalDays:     10,
			easeFactor:       3.0,
			expectedInterval: 25,
			expectedEase:     3.0,
		},
		{
			name:             "zero interval still schedules a day out",
			rating:           domain.Good,
			intervalDays:     0,
			easeFactor:       2.5,
			expectedInterval: 1,
			expectedEase:     2.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NextSpaced(tc.rating, tc.intervalDays, tc.easeFactor, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IntervalDays != tc.expectedInterval {
				t.Errorf("expected interval %d, got %d", tc.expectedInterval, result.IntervalDays)
			}
			if result.EaseFactor != tc.expectedEase {
				t.Errorf("expected ease %.2f, got %.2f", tc.expectedEase, result.EaseFactor)
			}
			expectedDue := now.AddDate(0, 0, tc.expectedInterval)
			if !result.NextReview.Equal(expectedDue) {
				t.Errorf("expected next review %v, got %v", expectedDue, result.NextReview)
			}
		})
	}
}

func TestNextSpacedEaseStaysInBounds(t *testing.T) {
	now := time.Now()
	for _, ease := range []float64{1.3, 1.5, 2.5, 3.0} {
		for rating := domain.Poor; rating <= domain.Excellent; rating++ {
			result, err := NextSpaced(rating, 6, ease, now)
			if err != nil {
				t.Fatalf("unexpected error for rating %d: %v", rating, err)
			}
			if result.EaseFactor < EaseMin || result.EaseFactor > EaseMax {
				t.Errorf("rating %d with ease %.2f produced out-of-bounds ease %.2f", rating, ease, result.EaseFactor)
			}
		}
	}
}

func TestNextSpacedPoorAlwaysResets(t *testing.T) {
	now := time.Now()
	for _, interval := range []int{1, 6, 30, 365} {
		result, err := NextSpaced(domain.Poor, interval, 2.5, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IntervalDays != 1 {
			t.Errorf("interval %d with poor rating: expected reset to 1, got %d", interval, result.IntervalDays)
		}
	}
}

func TestNextSpacedInvalidRating(t *testing.T) {
	for _, rating := range []int{0, -1, 5, 100} {
		_, err := NextSpaced(domain.Rating(rating), 6, 2.5, time.Now())
		if !errors.Is(err, domain.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestNextScheduled(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pattern := "1d,1w,2w,1m"

	t.Run("walks the pattern by review count", func(t *testing.T) {
		expected := []int{1, 7, 14, 30, 30, 30}
		for count, want := range expected {
			result, err := NextScheduled(domain.Good, pattern, count, 2.5, now)
			if err != nil {
				t.Fatalf("unexpected error at count %d: %v", count, err)
			}
			if result.IntervalDays != want {
				t.Errorf("count %d: expected interval %d, got %d", count, want, result.IntervalDays)
			}
		}
	})

	t.Run("rating does not influence the cadence", func(t *testing.T) {
		for rating := domain.Poor; rating <= domain.Excellent; rating++ {
			result, err := NextScheduled(rating, pattern, 1, 2.5, now)
			if err != nil {
				t.Fatalf("unexpected error for rating %d: %v", rating, err)
			}
			if result.IntervalDays != 7 {
				t.Errorf("rating %d: expected interval 7, got %d", rating, result.IntervalDays)
			}
		}
	})

	t.Run("ease factor passes through unmodified", func(t *testing.T) {
		result, err := NextScheduled(domain.Poor, pattern, 0, 1.7, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.EaseFactor != 1.7 {
			t.Errorf("expected ease 1.7, got %.2f", result.EaseFactor)
		}
	})

	t.Run("invalid rating still fails", func(t *testing.T) {
		_, err := NextScheduled(domain.Rating(9), pattern, 0, 2.5, now)
		if !errors.Is(err, domain.ErrInvalidRating) {
			t.Errorf("expected ErrInvalidRating, got %v", err)
		}
	})
}

func TestNextDispatchesOnMode(t *testing.T) {
	now := time.Now()

	spaced, err := Next(domain.ModeSpaced, domain.Good, 6, 2.5, "", 3, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spaced.IntervalDays != 15 {
		t.Errorf("spaced mode: expected interval 15, got %d", spaced.IntervalDays)
	}

	scheduled, err := Next(domain.ModeScheduled, domain.Good, 6, 2.5, "1d,1w", 0, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scheduled.IntervalDays != 1 {
		t.Errorf("scheduled mode: expected interval 1, got %d", scheduled.IntervalDays)
	}
}
