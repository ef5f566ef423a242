package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

// WriteIndex regenerates the README.md registry in the notes directory:
// summary counts, a table of every note's schedule state, and the most
// recently reviewed notes. The index is derived data and may be
// rebuilt from the notes at any time.
func (s *Store) WriteIndex(notes []*domain.Note, now time.Time) error {
	var b strings.Builder
	b.WriteString("# Learning Notes\n\n")
	fmt.Fprintf(&b, "Last updated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	var dueToday, spaced, scheduled int
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	for _, n := range notes {
		if !n.NextReview.After(endOfDay) {
			dueToday++
		}
		if n.ReviewMode == domain.ModeScheduled {
			scheduled++
		} else {
			spaced++
		}
	}

	b.WriteString("## Statistics\n")
	fmt.Fprintf(&b, "- Total notes: %d\n", len(notes))
	fmt.Fprintf(&b, "- Due today: %d\n", dueToday)
	fmt.Fprintf(&b, "- Spaced repetition: %d notes\n", spaced)
	fmt.Fprintf(&b, "- Scheduled: %d notes\n\n", scheduled)

	b.WriteString("## Notes Registry\n\n")
	b.WriteString("| File | Title | Mode | Next Review | Reviews | Ease |\n")
	b.WriteString("|------|-------|------|-------------|---------|------|\n")
	for _, n := range notes {
		title := n.Title
		if len(title) > 40 {
			title = title[:40]
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %.2f |\n",
			n.Filename, title, n.ReviewMode,
			n.NextReview.Format("2006-01-02"), n.ReviewCount, n.EaseFactor)
	}

	b.WriteString("\n## Recent Reviews\n\n")
	reviewed := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if n.LastReviewed != nil {
			reviewed = append(reviewed, n)
		}
	}
	sort.Slice(reviewed, func(i, j int) bool {
		return reviewed[i].LastReviewed.After(*reviewed[j].LastReviewed)
	})
	if len(reviewed) > 10 {
		reviewed = reviewed[:10]
	}
	for _, n := range reviewed {
		fmt.Fprintf(&b, "- %s: Reviewed %s (%s)\n",
			n.LastReviewed.Format("2006-01-02"), n.Filename, n.Title)
	}

	lock := s.fileLock(indexFile)
	lock.Lock()
	defer lock.Unlock()
	return s.writeAtomic(indexFile, []byte(b.String()))
}
