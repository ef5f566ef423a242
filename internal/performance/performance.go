// Package performance maintains per-question rolling scores using an
// exponential moving average keyed by a stable question hash.
package performance

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/learnbase/internal/domain"
)

// EMA weights: the newest score dominates so that recent performance is
// reflected quickly, while history damps single-session swings.
const (
	emaNewWeight = 0.7
	emaOldWeight = 0.3
)

// NormalizeQuestion cleans question text before hashing: lowercase,
// trimmed, with line endings unified. Two verbatim repeats of the same
// question always normalize identically.
func NormalizeQuestion(text string) string {
	q := strings.ToLower(text)
	q = strings.TrimSpace(q)
	q = strings.ReplaceAll(q, "\r\n", "\n")
	return q
}

// HashQuestion returns the SHA-256 hex digest of the normalized
// question text. This is the stable identifier under which a question
// accumulates its rolling score.
func HashQuestion(text string) string {
	sum := sha256.Sum256([]byte(NormalizeQuestion(text)))
	return fmt.Sprintf("%x", sum)
}

// MergeScore folds one new score into an existing rolling average.
// When no prior score exists the new score is taken as-is.
func MergeScore(existing float64, hasExisting bool, score float64) float64 {
	if !hasExisting {
		return score
	}
	return emaNewWeight*score + emaOldWeight*existing
}

// Merge folds every answered session question into the performance
// map and returns it. A nil map is allocated on first use. Scores
// outside [0, 1] are rejected before anything is merged, so a failed
// call leaves the map untouched.
//
// Merging is not idempotent: submitting the same session twice
// double-counts. The caller persists each session exactly once.
func Merge(existing map[string]float64, questions []domain.SessionQuestion) (map[string]float64, error) {
	for _, q := range questions {
		if q.QuestionHash == "" {
			return existing, fmt.Errorf("performance: question %q has no hash", q.QuestionText)
		}
		if q.Score < 0 || q.Score > 1 {
			return existing, fmt.Errorf("performance: score %v for question %s out of range [0, 1]", q.Score, q.QuestionHash)
		}
	}

	if existing == nil {
		existing = make(map[string]float64, len(questions))
	}
	for _, q := range questions {
		prev, ok := existing[q.QuestionHash]
		existing[q.QuestionHash] = MergeScore(prev, ok, q.Score)
	}
	return existing, nil
}
