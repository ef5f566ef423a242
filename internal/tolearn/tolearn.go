// Package tolearn maintains the queue of topics the user wants to
// study, persisted as a single markdown file with a quick-capture
// table, a detailed section, and an archive. The file stays
// hand-editable; every write regenerates it from the parsed structure.
package tolearn

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

const maxTopicLength = 200

const dateFormat = "2006-01-02"

// Topic is one entry in the to-learn queue. Added and Completed are
// date strings as they appear in the file.
type Topic struct {
	Topic     string
	Added     string
	Completed string
	Context   string
	Notes     string
	Detailed  bool
	Archived  bool
}

// document is the parsed file, one slice per section.
type document struct {
	quick    []Topic
	detailed []Topic
	archived []Topic
}

// Manager reads and rewrites the to-learn file. Mutations are
// serialized; the write is atomic (temp file + rename).
type Manager struct {
	path string
	dir  string

	mu    sync.Mutex
	clock func() time.Time
}

// NewManager opens the to-learn file at path, creating an empty one
// (and its parent directory) if none exists.
func NewManager(path string) (*Manager, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating to-learn dir %s: %v", domain.ErrIO, dir, err)
	}

	m := &Manager{path: path, dir: dir, clock: time.Now}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := m.write(&document{}); err != nil {
			return nil, err
		}
		slog.Info("created to-learn file", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("%w: checking %s: %v", domain.ErrIO, path, err)
	}
	return m, nil
}

func validateTopicName(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("tolearn: topic name cannot be empty")
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("tolearn: topic name cannot exceed %d characters", maxTopicLength)
	}
	return nil
}

// sanitizeHeader strips characters that would break a markdown header.
func sanitizeHeader(topic string) string {
	r := strings.NewReplacer("#", "", "[", "", "]", "")
	return strings.TrimSpace(r.Replace(topic))
}

func sameTopic(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Add appends a new topic. Quick topics land in the capture table;
// detailed ones get their own section with notes. Duplicate names
// (case-insensitive, archive included) are rejected.
func (m *Manager) Add(topic, context string, detailed bool, notes string) error {
	if err := validateTopicName(topic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		return err
	}
	for _, t := range doc.all() {
		if sameTopic(t.Topic, topic) {
			return fmt.Errorf("tolearn: topic %q already exists", topic)
		}
	}

	entry := Topic{
		Topic:    topic,
		Added:    m.clock().Format(dateFormat),
		Context:  context,
		Detailed: detailed,
	}
	if detailed {
		entry.Notes = notes
		doc.detailed = append(doc.detailed, entry)
	} else {
		doc.quick = append(doc.quick, entry)
	}

	if err := m.write(doc); err != nil {
		return err
	}
	slog.Info("added to-learn topic", "topic", topic, "detailed", detailed)
	return nil
}

// List returns the active topics in file order, optionally followed by
// the archived ones.
func (m *Manager) List(includeArchived bool) ([]Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		return nil, err
	}
	topics := append([]Topic{}, doc.quick...)
	topics = append(topics, doc.detailed...)
	if includeArchived {
		topics = append(topics, doc.archived...)
	}
	return topics, nil
}

// Get looks a topic up by name, archive included. Unknown names fail
// with ErrNotFound.
func (m *Manager) Get(topic string) (*Topic, error) {
	if err := validateTopicName(topic); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		return nil, err
	}
	for _, t := range doc.all() {
		if sameTopic(t.Topic, topic) {
			found := t
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: to-learn topic %q", domain.ErrNotFound, topic)
}

// Archive moves an active topic into the archive with a completion
// date. The entry is never deleted; the queue keeps its history.
// Archiving an unknown or already-archived topic fails with ErrNotFound.
func (m *Manager) Archive(topic string) error {
	if err := validateTopicName(topic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		return err
	}

	found, ok := doc.takeActive(topic)
	if !ok {
		return fmt.Errorf("%w: to-learn topic %q", domain.ErrNotFound, topic)
	}

	found.Archived = true
	found.Detailed = true
	found.Completed = m.clock().Format(dateFormat)
	doc.archived = append(doc.archived, found)

	if err := m.write(doc); err != nil {
		return err
	}
	slog.Info("archived to-learn topic", "topic", topic)
	return nil
}

// Update rewrites a topic's notes and/or context; nil leaves a field
// unchanged. Giving a quick topic non-blank notes promotes it to the
// detailed section. Unknown names fail with ErrNotFound.
func (m *Manager) Update(topic string, notes, context *string) error {
	if err := validateTopicName(topic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		return err
	}

	lists := []*[]Topic{&doc.quick, &doc.detailed, &doc.archived}
	for _, list := range lists {
		for i := range *list {
			t := &(*list)[i]
			if !sameTopic(t.Topic, topic) {
				continue
			}
			if notes != nil {
				t.Notes = *notes
				if !t.Detailed && strings.TrimSpace(*notes) != "" {
					t.Detailed = true
					promoted := *t
					*list = append((*list)[:i], (*list)[i+1:]...)
					doc.detailed = append(doc.detailed, promoted)
				}
			}
			if context != nil {
				// The promoted copy, if any, is the live entry now.
				m.setContext(doc, topic, *context)
			}
			if err := m.write(doc); err != nil {
				return err
			}
			slog.Info("updated to-learn topic", "topic", topic)
			return nil
		}
	}
	return fmt.Errorf("%w: to-learn topic %q", domain.ErrNotFound, topic)
}

func (m *Manager) setContext(doc *document, topic, context string) {
	for _, list := range []*[]Topic{&doc.quick, &doc.detailed, &doc.archived} {
		for i := range *list {
			if sameTopic((*list)[i].Topic, topic) {
				(*list)[i].Context = context
			}
		}
	}
}

func (d *document) all() []Topic {
	topics := append([]Topic{}, d.quick...)
	topics = append(topics, d.detailed...)
	return append(topics, d.archived...)
}

// takeActive removes and returns the first active entry matching the
// topic name.
func (d *document) takeActive(topic string) (Topic, bool) {
	for _, list := range []*[]Topic{&d.quick, &d.detailed} {
		for i := range *list {
			if sameTopic((*list)[i].Topic, topic) {
				found := (*list)[i]
				*list = append((*list)[:i], (*list)[i+1:]...)
				return found, true
			}
		}
	}
	return Topic{}, false
}
