package history

const schema = `
-- The 'sessions' table is a summary index over the per-session JSON
-- records. It never replaces them; it exists for cheap analytics.
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    note_filename TEXT NOT NULL,
    start_time DATETIME NOT NULL,
    end_time DATETIME,
    overall_rating INTEGER,
    average_score REAL,
    question_count INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_note ON sessions(note_filename);
CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
`
