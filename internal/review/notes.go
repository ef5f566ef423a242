package review

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/conorfennell/learnbase/internal/domain"
	"github.com/conorfennell/learnbase/internal/scheduler"
)

const maxTitleLength = 200

// CreateNote adds a new note, due immediately for its first review.
// Scheduled mode requires a parseable schedule pattern (or a preset
// name); spaced mode starts at a one-day interval with the default
// ease factor. The assigned filename is returned.
func (s *Service) CreateNote(title, body string, mode domain.ReviewMode, pattern string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("review: title cannot be empty")
	}
	if len(title) > maxTitleLength {
		return "", fmt.Errorf("review: title cannot exceed %d characters", maxTitleLength)
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("review: body cannot be empty")
	}
	if !mode.IsValid() {
		return "", fmt.Errorf("review: invalid review mode %q", mode)
	}
	if mode == domain.ModeScheduled {
		if pattern == "" {
			pattern = s.defaultPattern
		}
		if !scheduler.ValidPattern(pattern) {
			return "", fmt.Errorf("review: invalid schedule pattern %q", pattern)
		}
	} else {
		pattern = ""
	}

	now := s.clock()
	note := &domain.Note{
		Title:           title,
		Body:            body,
		ReviewMode:      mode,
		SchedulePattern: pattern,
		Created:         now,
		NextReview:      now,
		IntervalDays:    1,
		EaseFactor:      scheduler.EaseDefault,
	}

	filename, err := s.notes.Create(note)
	if err != nil {
		return "", err
	}
	s.refreshIndex()

	slog.Info("created note", "filename", filename, "mode", mode)
	return filename, nil
}

// AppendToNote adds text to the end of a note's body. Body content is
// only ever changed by external callers; the core's algorithms never
// touch it.
func (s *Service) AppendToNote(filename, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("review: nothing to append to %s", filename)
	}

	note, err := s.notes.Load(filename)
	if err != nil {
		return err
	}

	if note.Body != "" && !strings.HasSuffix(note.Body, "\n") {
		note.Body += "\n"
	}
	note.Body += "\n" + strings.TrimRight(text, "\n") + "\n"

	return s.notes.Save(note)
}

// DeleteNote removes a note file. Session history is retained; the
// trail outlives the note.
func (s *Service) DeleteNote(filename string) error {
	if err := s.notes.Delete(filename); err != nil {
		return err
	}
	s.refreshIndex()
	slog.Info("deleted note", "filename", filename)
	return nil
}
