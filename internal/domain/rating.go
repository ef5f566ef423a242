package domain

import "fmt"

// Rating is the user's recall-confidence assessment after a review.
type Rating int

const (
	Poor      Rating = 1 // Did not remember.
	Fair      Rating = 2 // Barely remembered.
	Good      Rating = 3 // Remembered well.
	Excellent Rating = 4 // Perfect recall.
)

var ratingNames = map[Rating]string{
	Poor:      "poor",
	Fair:      "fair",
	Good:      "good",
	Excellent: "excellent",
}

// IsValid reports whether r is within the accepted 1-4 range.
func (r Rating) IsValid() bool {
	return r >= Poor && r <= Excellent
}

// String returns the rating's name, or "rating(n)" for invalid values.
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rating(%d)", int(r))
}
