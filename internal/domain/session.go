package domain

import "time"

// SessionQuestion records one question asked during a review session.
// The hash is derived from the normalized question text so that the
// same question asked in different sessions shares a performance entry.
type SessionQuestion struct {
	QuestionHash     string  `json:"question_hash" validate:"required"`
	QuestionText     string  `json:"question_text"`
	UserAnswer       string  `json:"user_answer"`
	EvaluationKind   string  `json:"evaluation_kind"`
	Score            float64 `json:"score" validate:"min=0,max=1"`
	FollowUpCount    int     `json:"follow_up_count" validate:"min=0"`
	UserHadQuestions bool    `json:"user_had_questions"`
}

// PriorityInput is a new focus-topic request made during a session.
type PriorityInput struct {
	Topic  string `json:"topic" validate:"required"`
	Reason string `json:"reason"`
}

// SessionRecord is the self-contained record of one review session,
// assembled in memory by the external caller and persisted exactly once
// at session end. A nil OverallRating marks the session as interrupted:
// question and priority data still persist, but no scheduler update may
// be derived from it.
type SessionRecord struct {
	SessionID    string     `json:"session_id" validate:"required"`
	NoteFilename string     `json:"note_filename"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`

	Questions     []SessionQuestion `json:"questions" validate:"dive"`
	OverallRating *Rating           `json:"overall_rating,omitempty" validate:"omitempty,min=1,max=4"`
	AverageScore  float64           `json:"average_score" validate:"min=0,max=1"`

	PrioritiesRequested []PriorityInput `json:"priorities_requested,omitempty" validate:"dive"`
	PrioritiesAddressed []string        `json:"priorities_addressed,omitempty"`

	// PerformanceMerged is set by the engine once the session's scores
	// have been folded into the note, making an accidental second
	// submission of the same record detectable.
	PerformanceMerged bool `json:"performance_merged"`
}

// Complete reports whether the session finished with an overall rating.
func (s *SessionRecord) Complete() bool {
	return s.OverallRating != nil
}
