package tolearn

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "to_learn.md"))
	if err != nil {
		t.Fatalf("failed to open to-learn file: %v", err)
	}
	m.clock = func() time.Time { return testNow }
	return m
}

func strptr(s string) *string { return &s }

func TestNewManagerCreatesInitialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "to_learn.md")
	if _, err := NewManager(path); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("initial file missing: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# Topics to Learn", "## Quick Capture Topics", "## Detailed Topics", "## Archive", "Total topics: 0"} {
		if !strings.Contains(content, want) {
			t.Errorf("initial file missing %q", want)
		}
	}
}

func TestAddAndList(t *testing.T) {
	m := newTestManager(t)

	if err := m.Add("TLS handshake", "networking", false, ""); err != nil {
		t.Fatalf("quick add failed: %v", err)
	}
	if err := m.Add("Raft consensus", "distributed systems", true, "Start with the paper's figure 2."); err != nil {
		t.Fatalf("detailed add failed: %v", err)
	}

	topics, err := m.List(false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}

	quick := topics[0]
	if quick.Topic != "TLS handshake" || quick.Detailed || quick.Added != "2026-03-01" {
		t.Errorf("unexpected quick topic: %+v", quick)
	}
	detailed := topics[1]
	if detailed.Topic != "Raft consensus" || !detailed.Detailed {
		t.Errorf("unexpected detailed topic: %+v", detailed)
	}
	if detailed.Notes != "Start with the paper's figure 2." {
		t.Errorf("notes did not round-trip: %q", detailed.Notes)
	}
	if detailed.Context != "distributed systems" {
		t.Errorf("context did not round-trip: %q", detailed.Context)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	m := newTestManager(t)

	if err := m.Add("TLS handshake", "", false, ""); err != nil {
		t.Fatal(err)
	}
	if err := m.Add("tls HANDSHAKE", "", true, "x"); err == nil {
		t.Error("expected a case-insensitive duplicate to be rejected")
	}

	if err := m.Archive("TLS handshake"); err != nil {
		t.Fatal(err)
	}
	if err := m.Add("TLS handshake", "", false, ""); err == nil {
		t.Error("expected a duplicate of an archived topic to be rejected")
	}
}

func TestAddValidation(t *testing.T) {
	m := newTestManager(t)

	if err := m.Add("   ", "", false, ""); err == nil {
		t.Error("expected a blank topic name to be rejected")
	}
	if err := m.Add(strings.Repeat("x", 201), "", false, ""); err == nil {
		t.Error("expected an over-long topic name to be rejected")
	}
}

func TestGet(t *testing.T) {
	m := newTestManager(t)
	if err := m.Add("TLS handshake", "networking", false, ""); err != nil {
		t.Fatal(err)
	}

	topic, err := m.Get("tls handshake")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if topic.Topic != "TLS handshake" || topic.Context != "networking" {
		t.Errorf("unexpected topic: %+v", topic)
	}

	if _, err := m.Get("unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArchive(t *testing.T) {
	m := newTestManager(t)
	if err := m.Add("TLS handshake", "networking", false, ""); err != nil {
		t.Fatal(err)
	}

	if err := m.Archive("TLS handshake"); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	active, err := m.List(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active topics, got %d", len(active))
	}

	all, err := m.List(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 archived topic, got %d", len(all))
	}
	archived := all[0]
	if !archived.Archived || archived.Completed != "2026-03-01" {
		t.Errorf("unexpected archived topic: %+v", archived)
	}

	if err := m.Archive("TLS handshake"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second archive, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	t.Run("context only", func(t *testing.T) {
		m := newTestManager(t)
		if err := m.Add("TLS handshake", "old", false, ""); err != nil {
			t.Fatal(err)
		}
		if err := m.Update("TLS handshake", nil, strptr("networking")); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		topic, err := m.Get("TLS handshake")
		if err != nil {
			t.Fatal(err)
		}
		if topic.Context != "networking" || topic.Detailed {
			t.Errorf("unexpected topic after update: %+v", topic)
		}
	})

	t.Run("notes promote a quick topic to detailed", func(t *testing.T) {
		m := newTestManager(t)
		if err := m.Add("TLS handshake", "networking", false, ""); err != nil {
			t.Fatal(err)
		}
		if err := m.Update("TLS handshake", strptr("The server picks the cipher suite."), nil); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		topic, err := m.Get("TLS handshake")
		if err != nil {
			t.Fatal(err)
		}
		if !topic.Detailed {
			t.Error("expected the topic to be promoted to detailed")
		}
		if topic.Notes != "The server picks the cipher suite." {
			t.Errorf("notes did not persist: %q", topic.Notes)
		}
	})

	t.Run("unknown topic", func(t *testing.T) {
		m := newTestManager(t)
		if err := m.Update("unknown", strptr("x"), nil); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestParseHandEditedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "to_learn.md")
	content := `# Topics to Learn

> Last updated: 2026-02-01 09:00:00
> Total topics: 2

## Quick Capture Topics

| Topic | Added | Context |
| ----- | ----- | ------- |
| TLS handshake | 2026-01-10 | networking |

## Detailed Topics

### Raft consensus
**Added:** 2026-01-12
**Context:** distributed systems

Start with the paper's figure 2.
Then implement leader election.

## Archive

### Completed Topics

### Bloom filters
**Added:** 2025-12-01
**Completed:** 2026-01-05
**Context:** data structures
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	all, err := m.List(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(all))
	}
	if all[0].Topic != "TLS handshake" || all[0].Added != "2026-01-10" {
		t.Errorf("quick topic misparsed: %+v", all[0])
	}
	if all[1].Topic != "Raft consensus" || !strings.Contains(all[1].Notes, "leader election") {
		t.Errorf("detailed topic misparsed: %+v", all[1])
	}
	if all[2].Topic != "Bloom filters" || !all[2].Archived || all[2].Completed != "2026-01-05" {
		t.Errorf("archived topic misparsed: %+v", all[2])
	}
}

func TestHeaderSanitization(t *testing.T) {
	m := newTestManager(t)
	if err := m.Add("C# [generics] #advanced", "", true, "Constraints and variance."); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "### C generics advanced") {
		t.Errorf("expected a sanitized header, got:\n%s", data)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	m := newTestManager(t)
	if err := m.Add("TLS handshake", "", false, ""); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}
