package storage

const schema = `
-- The 'schedule' table holds one row per question identifier.
CREATE TABLE IF NOT EXISTS schedule (
    id TEXT PRIMARY KEY,            -- sha256 of the question line
    due_date TEXT NOT NULL,         -- ISO calendar date, YYYY-MM-DD
    interval_index INTEGER NOT NULL -- index into the interval ladder
);
`
