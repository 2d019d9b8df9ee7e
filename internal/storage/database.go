package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conorfennell/drill/internal/schedule"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB is the SQLite-backed schedule store.
type DB struct {
	conn *sql.DB
}

var _ schedule.Store = (*DB)(nil)

// Exists reports whether a database file is present at path. Maintenance
// commands use it to stay no-ops instead of creating an empty store.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open creates the database file and its directory if needed and ensures
// the schema is up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every statement runs on one connection; each is atomic on its own.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get retrieves the schedule entry for id. It returns (nil, nil) when the
// question has never been reviewed.
func (db *DB) Get(ctx context.Context, id string) (*schedule.Entry, error) {
	var (
		due   string
		index int
	)
	row := db.conn.QueryRowContext(ctx, `
		SELECT due_date, interval_index
		FROM schedule WHERE id = ?
	`, id)

	if err := row.Scan(&due, &index); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Never reviewed
		}
		return nil, fmt.Errorf("failed to find schedule entry %s: %w", id, err)
	}

	dueDate, err := schedule.ParseDate(due)
	if err != nil {
		return nil, fmt.Errorf("failed to parse due date %q for %s: %w", due, id, err)
	}
	return &schedule.Entry{ID: id, Due: dueDate, Index: index}, nil
}

// Put inserts or replaces the entry for e.ID.
func (db *DB) Put(ctx context.Context, e schedule.Entry) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO schedule (id, due_date, interval_index)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			due_date = excluded.due_date,
			interval_index = excluded.interval_index
	`,
		e.ID,
		schedule.FormatDate(e.Due),
		e.Index,
	)
	if err != nil {
		return fmt.Errorf("failed to store schedule entry %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes the entry for id. Deleting a missing id is not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, `
		DELETE FROM schedule
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry %s: %w", id, err)
	}
	return nil
}

// DeleteIDs removes every listed entry in a single transaction and returns
// how many rows were actually deleted.
func (db *DB) DeleteIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM schedule WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	var deleted int64
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete schedule entry %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count deleted rows for %s: %w", id, err)
		}
		deleted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return deleted, nil
}

// AllIdentifiers returns every identifier in the store.
func (db *DB) AllIdentifiers(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM schedule`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule rows: %w", err)
	}
	return ids, nil
}
