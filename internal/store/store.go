// Package store persists notes as markdown files with YAML frontmatter
// in a single directory. Writes are atomic (temp file + rename) and
// serialized per filename; reads of different notes are independent.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
	"github.com/conorfennell/learnbase/internal/frontmatter"
)

const indexFile = "README.md"

// Store is a note repository rooted at a single directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New opens (creating if needed) the notes directory.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating notes dir %s: %v", domain.ErrIO, dir, err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the notes directory path.
func (s *Store) Dir() string {
	return s.dir
}

// fileLock returns the per-filename mutex, creating it on first use.
func (s *Store) fileLock(filename string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[filename]
	if !ok {
		l = &sync.Mutex{}
		s.locks[filename] = l
	}
	return l
}

// Load reads and parses one note. Unknown filenames fail with
// ErrNotFound; an unparseable header fails with ErrMalformedHeader and
// the file is left untouched for inspection.
func (s *Store) Load(filename string) (*domain.Note, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrIO, filename, err)
	}

	var note domain.Note
	body, err := frontmatter.Decode(data, &note)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	note.Filename = filename
	note.Body = body

	if !note.ReviewMode.IsValid() {
		return nil, fmt.Errorf("%s: %w: unknown review_mode %q", filename, domain.ErrMalformedHeader, note.ReviewMode)
	}
	return &note, nil
}

// Save writes the note atomically: the full content goes to a temp file
// in the notes directory which is then renamed over the target, so a
// crash mid-write never leaves a truncated note. Concurrent saves of
// the same filename are serialized.
func (s *Store) Save(note *domain.Note) error {
	if err := ValidateFilename(note.Filename); err != nil {
		return err
	}

	content, err := frontmatter.Encode(note, note.Body)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", note.Filename, err)
	}

	lock := s.fileLock(note.Filename)
	lock.Lock()
	defer lock.Unlock()

	return s.writeAtomic(note.Filename, content)
}

func (s *Store) writeAtomic(filename string, content []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for %s: %v", domain.ErrIO, filename, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", domain.ErrIO, filename, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod %s: %v", domain.ErrIO, filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file for %s: %v", domain.ErrIO, filename, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, filename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming %s into place: %v", domain.ErrIO, filename, err)
	}
	return nil
}

// ListAll loads every note in the directory sorted by next review time.
// Notes that fail to parse are skipped with a log entry; a corrupted
// note never blocks the rest of the collection.
func (s *Store) ListAll() ([]*domain.Note, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading notes dir %s: %v", domain.ErrIO, s.dir, err)
	}

	var notes []*domain.Note
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == indexFile || !strings.HasSuffix(name, ".md") {
			continue
		}
		if ValidateFilename(name) != nil {
			continue
		}
		note, err := s.Load(name)
		if err != nil {
			slog.Error("skipping unreadable note", "filename", name, "error", err)
			continue
		}
		notes = append(notes, note)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].NextReview.Before(notes[j].NextReview)
	})
	return notes, nil
}

// Create assigns the note a unique slugged filename derived from its
// title and writes it. On collision a numeric suffix is appended. The
// name is reserved by creating the file exclusively, so concurrent
// creates with the same title never pick the same filename. The chosen
// filename is set on the note and returned.
func (s *Store) Create(note *domain.Note) (string, error) {
	base := strings.TrimSuffix(Slugify(note.Title), ".md")
	filename := base + ".md"

	s.mu.Lock()
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: reserving filename %s: %v", domain.ErrIO, filename, err)
		}
		if counter >= 1000 {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: no free filename for %q", domain.ErrIO, note.Title)
		}
		filename = fmt.Sprintf("%s-%d.md", base, counter)
	}
	s.mu.Unlock()

	note.Filename = filename
	if err := s.Save(note); err != nil {
		os.Remove(filepath.Join(s.dir, filename))
		return "", err
	}
	return filename, nil
}

// Delete removes a note file. Deleting an unknown filename fails with
// ErrNotFound.
func (s *Store) Delete(filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}

	lock := s.fileLock(filename)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(filepath.Join(s.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", domain.ErrIO, filename, err)
	}
	return nil
}

// ValidateFilename rejects names that could escape the notes directory
// or collide with internal files.
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: empty filename", domain.ErrNotFound)
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("%w: filename %q contains a path separator", domain.ErrNotFound, filename)
	}
	if strings.HasPrefix(filename, ".") {
		return fmt.Errorf("%w: filename %q starts with a dot", domain.ErrNotFound, filename)
	}
	if !strings.HasSuffix(filename, ".md") {
		return fmt.Errorf("%w: filename %q must end in .md", domain.ErrNotFound, filename)
	}
	base := strings.TrimSuffix(filename, ".md")
	for _, r := range base {
		if !isSlugRune(r) {
			return fmt.Errorf("%w: filename %q contains invalid characters", domain.ErrNotFound, filename)
		}
	}
	return nil
}

// Slugify builds a safe filename from a title: lowercase, alphanumerics
// joined by hyphens, capped at 50 characters, with a .md extension.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-', r == '_':
			b.WriteByte(' ')
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.TrimSuffix(slug, "-")
	}
	if slug == "" {
		slug = fmt.Sprintf("note-%d", time.Now().Unix())
	}
	return slug + ".md"
}

func isSlugRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
