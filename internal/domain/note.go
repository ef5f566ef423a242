package domain

import "time"

// ReviewMode selects which scheduler branch applies to a note.
// It is fixed at note creation.
type ReviewMode string

const (
	// ModeSpaced schedules reviews with the SM-2 derived algorithm.
	ModeSpaced ReviewMode = "spaced"
	// ModeScheduled follows a fixed schedule pattern regardless of rating.
	ModeScheduled ReviewMode = "scheduled"
)

// IsValid reports whether m is a known review mode.
func (m ReviewMode) IsValid() bool {
	return m == ModeSpaced || m == ModeScheduled
}

// Note represents a single learning unit: a markdown body with a YAML
// frontmatter header holding review metadata. The Filename is the note's
// stable identifier and never changes after creation.
type Note struct {
	Filename string `yaml:"-"`
	Body     string `yaml:"-"`

	Title           string     `yaml:"title"`
	Created         time.Time  `yaml:"created"`
	ReviewMode      ReviewMode `yaml:"review_mode"`
	SchedulePattern string     `yaml:"schedule_pattern,omitempty"`

	LastReviewed *time.Time `yaml:"last_reviewed"`
	NextReview   time.Time  `yaml:"next_review"`
	IntervalDays int        `yaml:"interval_days"`
	EaseFactor   float64    `yaml:"ease_factor"`
	ReviewCount  int        `yaml:"review_count"`

	// QuestionPerformance maps a stable question hash to its rolling
	// average score in [0, 1].
	QuestionPerformance map[string]float64 `yaml:"question_performance,omitempty"`

	// PriorityRequests holds user-requested focus topics in request
	// order. Deactivated entries are retained for history.
	PriorityRequests []PriorityRequest `yaml:"priority_requests,omitempty"`
}

// PriorityRequest is a user-declared topic to emphasise in upcoming
// review sessions. It stays active until it has been addressed twice.
type PriorityRequest struct {
	Topic          string    `yaml:"topic" json:"topic"`
	Reason         string    `yaml:"reason" json:"reason"`
	RequestedAt    time.Time `yaml:"requested_at" json:"requested_at"`
	SessionID      string    `yaml:"session_id" json:"session_id"`
	TimesAddressed int       `yaml:"times_addressed" json:"times_addressed"`
	Active         bool      `yaml:"active" json:"active"`
}

// QuestionScore returns the rolling average score for a question hash,
// or false if the question has never been scored on this note.
func (n *Note) QuestionScore(hash string) (float64, bool) {
	score, ok := n.QuestionPerformance[hash]
	return score, ok
}

// Due reports whether the note's next review time has passed.
func (n *Note) Due(now time.Time) bool {
	return !n.NextReview.After(now)
}

// DaysSinceLastReview returns whole days elapsed since the last review,
// or -1 if the note has never been reviewed.
func (n *Note) DaysSinceLastReview(now time.Time) int {
	if n.LastReviewed == nil {
		return -1
	}
	days := int(now.Sub(*n.LastReviewed).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
