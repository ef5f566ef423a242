package performance

import (
	"math"
	"testing"

	"github.com/conorfennell/learnbase/internal/domain"
)

func TestNormalizeQuestion(t *testing.T) {
	normalized := NormalizeQuestion("  What is the GIL? \r\n")
	expected := "what is the gil?"
	if normalized != expected {
		t.Errorf("expected normalized question %q, got %q", expected, normalized)
	}
}

func TestHashQuestion(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		if HashQuestion("What is a goroutine?") != HashQuestion("What is a goroutine?") {
			t.Error("expected identical questions to hash the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if HashQuestion("  what is a goroutine? ") != HashQuestion("What Is A Goroutine?") {
			t.Error("expected hashes to match after normalization")
		}
	})

	t.Run("different questions have different hashes", func(t *testing.T) {
		if HashQuestion("Question one") == HashQuestion("Question two") {
			t.Error("expected different questions to hash differently")
		}
	})
}

func TestMergeScore(t *testing.T) {
	t.Run("absent key takes the new score exactly", func(t *testing.T) {
		if got := MergeScore(0, false, 0.8); got != 0.8 {
			t.Errorf("expected 0.8, got %v", got)
		}
	})

	t.Run("existing score blends 70/30", func(t *testing.T) {
		got := MergeScore(0.9, true, 0.5)
		expected := 0.7*0.5 + 0.3*0.9 // 0.62
		if math.Abs(got-expected) > 1e-9 {
			t.Errorf("expected %v, got %v", expected, got)
		}
	})

	t.Run("merge is linear in inputs", func(t *testing.T) {
		for _, pair := range [][2]float64{{0, 1}, {1, 0}, {0.25, 0.75}, {0.5, 0.5}} {
			existing, score := pair[0], pair[1]
			got := MergeScore(existing, true, score)
			expected := 0.7*score + 0.3*existing
			if math.Abs(got-expected) > 1e-9 {
				t.Errorf("existing=%v score=%v: expected %v, got %v", existing, score, expected, got)
			}
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("merges session questions into the map", func(t *testing.T) {
		existing := map[string]float64{"q1": 0.9}
		questions := []domain.SessionQuestion{
			{QuestionHash: "q1", Score: 0.5},
			{QuestionHash: "q2", Score: 0.8},
		}

		merged, err := Merge(existing, questions)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(merged["q1"]-0.62) > 1e-9 {
			t.Errorf("expected q1 to merge to 0.62, got %v", merged["q1"])
		}
		if merged["q2"] != 0.8 {
			t.Errorf("expected q2 to take the session score 0.8, got %v", merged["q2"])
		}
	})

	t.Run("allocates a map when none exists", func(t *testing.T) {
		merged, err := Merge(nil, []domain.SessionQuestion{{QuestionHash: "q1", Score: 0.4}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merged["q1"] != 0.4 {
			t.Errorf("expected 0.4, got %v", merged["q1"])
		}
	})

	t.Run("rejects out-of-range scores before merging anything", func(t *testing.T) {
		existing := map[string]float64{"q1": 0.9}
		questions := []domain.SessionQuestion{
			{QuestionHash: "q1", Score: 0.5},
			{QuestionHash: "q2", Score: 1.5},
		}
		if _, err := Merge(existing, questions); err == nil {
			t.Fatal("expected an error for score 1.5")
		}
		if existing["q1"] != 0.9 {
			t.Errorf("expected q1 untouched at 0.9, got %v", existing["q1"])
		}
	})

	t.Run("rejects questions without a hash", func(t *testing.T) {
		if _, err := Merge(nil, []domain.SessionQuestion{{Score: 0.5}}); err == nil {
			t.Fatal("expected an error for a hashless question")
		}
	})
}
