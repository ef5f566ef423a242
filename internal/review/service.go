// Package review exposes the operations consumed by the external
// review-conducting agent: due-note selection, review recording, and
// the combined end-of-session persistence (history + performance +
// priorities). Question generation and dialogue stay outside the core.
package review

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/learnbase/internal/domain"
	"github.com/conorfennell/learnbase/internal/history"
	"github.com/conorfennell/learnbase/internal/performance"
	"github.com/conorfennell/learnbase/internal/priority"
	"github.com/conorfennell/learnbase/internal/scheduler"
	"github.com/conorfennell/learnbase/internal/store"
)

// Service wires the note store, scheduler, and session trail together.
// All mutating operations on one note are expected to run sequentially
// within a single session; the service adds no locking beyond the
// store's atomic writes.
type Service struct {
	notes    *store.Store
	sessions *history.Log
	index    *history.Index // optional; nil disables analytics indexing

	validate       *validator.Validate
	defaultPattern string
	clock          func() time.Time
}

// NewService builds a Service. index may be nil; defaultPattern falls
// back to the moderate preset when empty.
func NewService(notes *store.Store, sessions *history.Log, index *history.Index, defaultPattern string) *Service {
	if defaultPattern == "" {
		defaultPattern = scheduler.DefaultPattern
	}
	return &Service{
		notes:          notes,
		sessions:       sessions,
		index:          index,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		defaultPattern: defaultPattern,
		clock:          time.Now,
	}
}

// DueNote is the schedule summary returned for each due note.
type DueNote struct {
	Filename            string    `json:"filename"`
	Title               string    `json:"title"`
	DaysSinceLastReview int       `json:"days_since_last_review"`
	IntervalDays        int       `json:"interval_days"`
	EaseFactor          float64   `json:"ease_factor"`
	NextReview          time.Time `json:"next_review"`
}

// GetDueNotes returns the notes whose next review time has passed,
// most overdue first. A limit of 0 means no limit; mode "" means both
// modes.
func (s *Service) GetDueNotes(limit int, mode domain.ReviewMode) ([]DueNote, error) {
	due, err := s.ListDue(s.clock())
	if err != nil {
		return nil, err
	}

	var out []DueNote
	for _, n := range due {
		if mode != "" && n.ReviewMode != mode {
			continue
		}
		out = append(out, DueNote{
			Filename:            n.Filename,
			Title:               n.Title,
			DaysSinceLastReview: n.DaysSinceLastReview(s.clock()),
			IntervalDays:        n.IntervalDays,
			EaseFactor:          n.EaseFactor,
			NextReview:          n.NextReview,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListDue returns the due notes ordered by ascending next review time.
// It has no side effects and may be re-run at any time.
func (s *Service) ListDue(now time.Time) ([]*domain.Note, error) {
	all, err := s.notes.ListAll()
	if err != nil {
		return nil, err
	}
	var due []*domain.Note
	for _, n := range all {
		if n.Due(now) {
			due = append(due, n)
		}
	}
	return due, nil
}

// ReviewNote is the read-only fetch of a note for an external review.
func (s *Service) ReviewNote(filename string) (*domain.Note, error) {
	return s.notes.Load(filename)
}

// RecordReview applies the rating to the note's schedule: next review
// time, interval, ease factor, and review count. It fails with
// ErrInvalidRating outside 1-4 and ErrNotFound for unknown filenames.
func (s *Service) RecordReview(filename string, rating domain.Rating) (scheduler.Result, error) {
	if !rating.IsValid() {
		return scheduler.Result{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	note, err := s.notes.Load(filename)
	if err != nil {
		return scheduler.Result{}, err
	}

	now := s.clock()
	pattern := note.SchedulePattern
	if pattern == "" {
		pattern = s.defaultPattern
	}
	result, err := scheduler.Next(note.ReviewMode, rating, note.IntervalDays, note.EaseFactor, pattern, note.ReviewCount, now)
	if err != nil {
		return scheduler.Result{}, err
	}

	note.LastReviewed = &now
	note.NextReview = result.NextReview
	note.IntervalDays = result.IntervalDays
	note.EaseFactor = result.EaseFactor
	note.ReviewCount++

	if err := s.notes.Save(note); err != nil {
		return scheduler.Result{}, err
	}
	s.refreshIndex()

	slog.Info("recorded review",
		"filename", filename,
		"rating", rating.String(),
		"interval_days", result.IntervalDays,
		"ease_factor", result.EaseFactor,
	)
	return result, nil
}

// CalculateNextReview is the pure preview variant of RecordReview: the
// same computation with no persistence.
func (s *Service) CalculateNextReview(mode domain.ReviewMode, rating domain.Rating, intervalDays int, easeFactor float64, pattern string, reviewCount int) (scheduler.Result, error) {
	if pattern == "" {
		pattern = s.defaultPattern
	}
	return scheduler.Next(mode, rating, intervalDays, easeFactor, pattern, reviewCount, s.clock())
}

// SaveSessionHistory is the single combined end-of-session write: it
// folds the session's question scores into the note's performance map,
// updates the priority registry, and appends the record to the session
// trail. Scheduling fields are never touched here; an interrupted
// session (no overall rating) persists its data without any scheduler
// update.
//
// The operation is not idempotent: re-submitting the same session
// double-counts the performance merge. On failure the caller retries
// the whole operation.
func (s *Service) SaveSessionHistory(filename string, rec *domain.SessionRecord) error {
	if rec == nil {
		return fmt.Errorf("review: nil session record")
	}
	rec.NoteFilename = filename
	if err := s.validate.Struct(rec); err != nil {
		return fmt.Errorf("review: invalid session record %s: %w", rec.SessionID, err)
	}

	note, err := s.notes.Load(filename)
	if err != nil {
		return err
	}

	merged, err := performance.Merge(note.QuestionPerformance, rec.Questions)
	if err != nil {
		return err
	}
	note.QuestionPerformance = merged

	now := s.clock()
	for _, req := range rec.PrioritiesRequested {
		note.PriorityRequests = priority.Register(note.PriorityRequests, req.Topic, req.Reason, rec.SessionID, now)
	}

	addressed := s.addressedTopics(note, rec)
	note.PriorityRequests = priority.MarkAddressed(note.PriorityRequests, addressed)

	if err := s.notes.Save(note); err != nil {
		return err
	}

	rec.PerformanceMerged = true
	if err := s.sessions.Append(rec); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Record(rec); err != nil {
			slog.Warn("failed to index session", "session_id", rec.SessionID, "error", err)
		}
	}

	slog.Info("saved session",
		"filename", filename,
		"session_id", rec.SessionID,
		"questions", len(rec.Questions),
		"complete", rec.Complete(),
		"priorities_addressed", len(addressed),
	)
	return nil
}

// addressedTopics merges the caller's explicit addressed list with
// topics detected in the session's question texts.
func (s *Service) addressedTopics(note *domain.Note, rec *domain.SessionRecord) []string {
	seen := make(map[string]bool)
	var addressed []string
	add := func(topic string) {
		key := strings.ToLower(strings.TrimSpace(topic))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		addressed = append(addressed, topic)
	}

	for _, topic := range rec.PrioritiesAddressed {
		add(topic)
	}

	texts := make([]string, 0, len(rec.Questions))
	for _, q := range rec.Questions {
		texts = append(texts, q.QuestionText)
	}
	for _, topic := range priority.Covered(note.PriorityRequests, texts) {
		add(topic)
	}
	return addressed
}

// NewSessionID hands out a fresh session identifier for external
// callers starting a review.
func (s *Service) NewSessionID() string {
	return s.sessions.NewSessionID()
}

// Sessions returns the persisted session trail for a note, oldest
// first.
func (s *Service) Sessions(filename string) ([]*domain.SessionRecord, error) {
	if err := store.ValidateFilename(filename); err != nil {
		return nil, err
	}
	return s.sessions.Sessions(filename)
}

// refreshIndex rebuilds the README registry. Index failures are logged,
// never fatal: the index is derived data.
func (s *Service) refreshIndex() {
	all, err := s.notes.ListAll()
	if err != nil {
		slog.Warn("failed to list notes for index refresh", "error", err)
		return
	}
	if err := s.notes.WriteIndex(all, s.clock()); err != nil {
		slog.Warn("failed to write notes index", "error", err)
	}
}
