// Package history is the append-only audit trail of review sessions.
// Each session is one self-contained JSON document; no operation ever
// edits or deletes a prior record, so the trail stays replayable
// independent of note state.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/conorfennell/learnbase/internal/domain"
)

// Log writes session records into a directory, one file per session.
type Log struct {
	dir string

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewLog opens (creating if needed) the history directory.
func NewLog(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating history dir %s: %v", domain.ErrIO, dir, err)
	}
	return &Log{
		dir:     dir,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewSessionID returns a fresh time-ordered session identifier.
func (l *Log) NewSessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()
}

// recordFilename builds the deterministic per-session filename from the
// note slug, the session start time, and the session ID.
func recordFilename(rec *domain.SessionRecord) string {
	slug := strings.TrimSuffix(rec.NoteFilename, ".md")
	return fmt.Sprintf("%s-%s-%s.json",
		slug, rec.StartTime.UTC().Format("20060102T150405Z"), rec.SessionID)
}

// Append persists one session record. The record must not already
// exist: a session is written exactly once, at session end. The write
// is atomic (temp file + rename).
func (l *Log) Append(rec *domain.SessionRecord) error {
	if rec.SessionID == "" {
		return fmt.Errorf("history: session record has no session_id")
	}
	if rec.NoteFilename == "" {
		return fmt.Errorf("history: session %s has no note filename", rec.SessionID)
	}

	name := recordFilename(rec)
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("history: session %s already persisted as %s", rec.SessionID, name)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encoding session %s: %w", rec.SessionID, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(l.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for session %s: %v", domain.ErrIO, rec.SessionID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing session %s: %v", domain.ErrIO, rec.SessionID, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod session %s: %v", domain.ErrIO, rec.SessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file for session %s: %v", domain.ErrIO, rec.SessionID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming session %s into place: %v", domain.ErrIO, rec.SessionID, err)
	}
	return nil
}

// Sessions loads every persisted session for a note, oldest first.
// Unreadable records are skipped rather than blocking the rest.
func (l *Log) Sessions(noteFilename string) ([]*domain.SessionRecord, error) {
	slug := strings.TrimSuffix(noteFilename, ".md")
	pattern := filepath.Join(l.dir, slug+"-*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("history: listing sessions for %s: %w", noteFilename, err)
	}

	var records []*domain.SessionRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrIO, filepath.Base(path), err)
		}
		var rec domain.SessionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if rec.NoteFilename != noteFilename {
			continue
		}
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartTime.Before(records[j].StartTime)
	})
	return records, nil
}
