package domain

import "errors"

// Sentinel errors for the core engine. Callers distinguish failure
// kinds with errors.Is.
var (
	// ErrNotFound indicates an unknown note filename.
	ErrNotFound = errors.New("note not found")
	// ErrInvalidRating indicates a rating outside the 1-4 range.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrMalformedHeader indicates a note whose frontmatter failed to
	// parse. Such notes are quarantined, never silently defaulted.
	ErrMalformedHeader = errors.New("malformed note header")
	// ErrIO indicates a read, write, or rename failure.
	ErrIO = errors.New("i/o failure")
)
