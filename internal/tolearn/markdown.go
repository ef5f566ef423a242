package tolearn

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/conorfennell/learnbase/internal/domain"
)

// read parses the to-learn file. A missing file yields an empty
// document rather than an error.
func (m *Manager) read() (*document, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrIO, m.path, err)
	}

	doc := &document{}
	for _, section := range strings.Split(string(data), "\n## ") {
		lower := strings.ToLower(section)
		switch {
		case strings.HasPrefix(lower, "quick capture topics"):
			doc.quick = parseQuickTable(section)
		case strings.HasPrefix(lower, "detailed topics"):
			doc.detailed = parseTopicSections(section, false)
		case strings.HasPrefix(lower, "archive"):
			doc.archived = parseTopicSections(section, true)
		}
	}
	return doc, nil
}

// parseQuickTable extracts the rows of the quick-capture table,
// skipping the header and separator lines.
func parseQuickTable(section string) []Topic {
	var topics []Topic
	inTable := false
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}
		if isTableSeparator(trimmed) {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}

		cells := strings.Split(trimmed, "|")
		if len(cells) < 4 {
			continue
		}
		// Drop the empty leading and trailing splits.
		cells = cells[1 : len(cells)-1]
		topic := Topic{
			Topic: strings.TrimSpace(cells[0]),
			Added: strings.TrimSpace(cells[1]),
		}
		if len(cells) > 2 {
			topic.Context = strings.TrimSpace(cells[2])
		}
		topics = append(topics, topic)
	}
	return topics
}

func isTableSeparator(line string) bool {
	if !strings.Contains(line, "---") {
		return false
	}
	for _, r := range line {
		if r != '|' && r != '-' && r != ' ' {
			return false
		}
	}
	return true
}

// parseTopicSections extracts "### " entries with their metadata lines
// and free-form notes. The archive's "Completed Topics" sub-header is
// structural only and skipped.
func parseTopicSections(section string, archived bool) []Topic {
	var topics []Topic
	parts := strings.Split(section, "\n### ")
	for _, part := range parts[1:] {
		lines := strings.Split(part, "\n")
		name := strings.TrimSpace(lines[0])
		if name == "" || strings.EqualFold(name, "completed topics") {
			continue
		}

		topic := Topic{Topic: name, Detailed: true, Archived: archived}
		var notes []string
		for _, line := range lines[1:] {
			switch {
			case strings.HasPrefix(line, "**Added:**"):
				topic.Added = strings.TrimSpace(strings.TrimPrefix(line, "**Added:**"))
			case strings.HasPrefix(line, "**Completed:**"):
				topic.Completed = strings.TrimSpace(strings.TrimPrefix(line, "**Completed:**"))
			case strings.HasPrefix(line, "**Context:**"):
				topic.Context = strings.TrimSpace(strings.TrimPrefix(line, "**Context:**"))
			case strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "**"):
				notes = append(notes, line)
			}
		}
		topic.Notes = strings.TrimSpace(strings.Join(notes, "\n"))
		topics = append(topics, topic)
	}
	return topics
}

// write regenerates the whole file from the document and renames it
// into place atomically.
func (m *Manager) write(doc *document) error {
	var b strings.Builder
	b.WriteString("# Topics to Learn\n\n")
	fmt.Fprintf(&b, "> Last updated: %s\n", m.clock().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "> Total topics: %d\n\n", len(doc.quick)+len(doc.detailed))

	b.WriteString("## Quick Capture Topics\n\n")
	b.WriteString("| Topic | Added | Context |\n")
	b.WriteString("|-------|-------|---------|\n")
	for _, t := range doc.quick {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", t.Topic, t.Added, t.Context)
	}

	b.WriteString("\n## Detailed Topics\n\n")
	for _, t := range doc.detailed {
		writeTopicSection(&b, t)
	}

	b.WriteString("## Archive\n\n### Completed Topics\n\n")
	for _, t := range doc.archived {
		writeTopicSection(&b, t)
	}

	return m.writeAtomic([]byte(b.String()))
}

func writeTopicSection(b *strings.Builder, t Topic) {
	fmt.Fprintf(b, "### %s\n", sanitizeHeader(t.Topic))
	fmt.Fprintf(b, "**Added:** %s\n", t.Added)
	if t.Completed != "" {
		fmt.Fprintf(b, "**Completed:** %s\n", t.Completed)
	}
	if t.Context != "" || t.Archived {
		fmt.Fprintf(b, "**Context:** %s\n", t.Context)
	}
	b.WriteString("\n")
	if t.Notes != "" {
		b.WriteString(t.Notes)
		b.WriteString("\n\n")
	}
}

func (m *Manager) writeAtomic(content []byte) error {
	tmp, err := os.CreateTemp(m.dir, ".to-learn.tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for %s: %v", domain.ErrIO, m.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", domain.ErrIO, m.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod %s: %v", domain.ErrIO, m.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file for %s: %v", domain.ErrIO, m.path, err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming %s into place: %v", domain.ErrIO, m.path, err)
	}
	return nil
}
