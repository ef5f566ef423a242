package review

import (
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
	"github.com/conorfennell/learnbase/internal/scheduler"
)

// Stats aggregates the collection's learning state.
type Stats struct {
	TotalNotes     int     `json:"total_notes"`
	DueToday       int     `json:"due_today"`
	DueThisWeek    int     `json:"due_this_week"`
	ReviewedToday  int     `json:"reviewed_today"`
	AverageEase    float64 `json:"average_ease"`
	SpacedNotes    int     `json:"spaced_notes"`
	ScheduledNotes int     `json:"scheduled_notes"`
	SessionsToday  int     `json:"sessions_today"`
}

// Stats computes collection statistics from the notes, plus today's
// session count from the analytics index when one is configured.
func (s *Service) Stats() (*Stats, error) {
	all, err := s.notes.ListAll()
	if err != nil {
		return nil, err
	}

	now := s.clock()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := midnight.AddDate(0, 0, 1).Add(-time.Second)
	weekEnd := now.AddDate(0, 0, 7)

	st := &Stats{TotalNotes: len(all)}
	var easeSum float64
	var reviewed int

	for _, n := range all {
		if !n.NextReview.After(endOfDay) {
			st.DueToday++
		} else if !n.NextReview.After(weekEnd) {
			st.DueThisWeek++
		}
		if n.LastReviewed != nil && !n.LastReviewed.Before(midnight) {
			st.ReviewedToday++
		}
		if n.ReviewMode == domain.ModeScheduled {
			st.ScheduledNotes++
		} else {
			st.SpacedNotes++
		}
		if n.ReviewCount > 0 {
			easeSum += n.EaseFactor
			reviewed++
		}
	}

	if reviewed > 0 {
		st.AverageEase = easeSum / float64(reviewed)
	} else {
		st.AverageEase = scheduler.EaseDefault
	}

	if s.index != nil {
		if count, err := s.index.SessionsSince(midnight); err == nil {
			st.SessionsToday = count
		}
	}
	return st, nil
}
