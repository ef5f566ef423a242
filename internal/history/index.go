package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/learnbase/internal/domain"
)

// Index is a queryable SQLite summary of the session trail. It is
// derived data: the JSON records remain the source of truth and the
// index can be rebuilt from them.
type Index struct {
	conn *sql.DB
}

// OpenIndex creates a new index connection and ensures the schema is up
// to date.
func OpenIndex(dsn string) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session index: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to session index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply session index schema: %w", err)
	}
	return &Index{conn: db}, nil
}

// Close closes the index connection.
func (ix *Index) Close() error {
	return ix.conn.Close()
}

// Record inserts one session's summary row. Inserting the same session
// ID twice fails on the primary key, which doubles as a guard against
// accidental double submission.
func (ix *Index) Record(rec *domain.SessionRecord) error {
	var rating sql.NullInt64
	if rec.OverallRating != nil {
		rating = sql.NullInt64{Int64: int64(*rec.OverallRating), Valid: true}
	}
	var end sql.NullTime
	if rec.EndTime != nil {
		end = sql.NullTime{Time: *rec.EndTime, Valid: true}
	}

	_, err := ix.conn.Exec(`
		INSERT INTO sessions (session_id, note_filename, start_time, end_time, overall_rating, average_score, question_count, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.SessionID,
		rec.NoteFilename,
		rec.StartTime,
		end,
		rating,
		rec.AverageScore,
		len(rec.Questions),
		rec.Complete(),
	)
	if err != nil {
		return fmt.Errorf("failed to index session %s: %w", rec.SessionID, err)
	}
	return nil
}

// NoteSummary aggregates the indexed sessions of one note.
type NoteSummary struct {
	NoteFilename   string
	SessionCount   int
	CompletedCount int
	AverageScore   float64
	LastSession    sql.NullTime
}

// SummarizeNote returns aggregate session figures for a note. A note
// with no indexed sessions yields a zero summary, not an error.
func (ix *Index) SummarizeNote(filename string) (*NoteSummary, error) {
	row := ix.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(completed), 0),
		       COALESCE(AVG(average_score), 0),
		       MAX(start_time)
		FROM sessions WHERE note_filename = ?
	`, filename)

	sum := &NoteSummary{NoteFilename: filename}
	if err := row.Scan(&sum.SessionCount, &sum.CompletedCount, &sum.AverageScore, &sum.LastSession); err != nil {
		return nil, fmt.Errorf("failed to summarize sessions for %s: %w", filename, err)
	}
	return sum, nil
}

// SessionsSince counts indexed sessions started at or after the cutoff.
func (ix *Index) SessionsSince(cutoff time.Time) (int, error) {
	var count int
	row := ix.conn.QueryRow(`SELECT COUNT(*) FROM sessions WHERE start_time >= ?`, cutoff)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent sessions: %w", err)
	}
	return count, nil
}
