package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sketchsync/sketchboard/board/canvas"
)

const createBoardsTable = `
CREATE TABLE IF NOT EXISTS boards (
	id      TEXT PRIMARY KEY,
	history TEXT NOT NULL
)`

// SQLiteStore persists the session table in a SQLite database file. Like
// FileStore it replaces the full table on every flush, which keeps the
// store interchangeable with the JSON file format.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(createBoardsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads every persisted session.
func (ss *SQLiteStore) Load() (map[string]canvas.Snapshot, error) {
	rows, err := ss.db.Query("SELECT id, history FROM boards")
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	table := make(map[string]canvas.Snapshot)
	for rows.Next() {
		var id, historyJSON string
		if err := rows.Scan(&id, &historyJSON); err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		var history []canvas.Action
		if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
			return nil, fmt.Errorf("failed to parse history for session %s: %w", id, err)
		}
		table[id] = canvas.Snapshot{ID: id, History: history}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read board rows: %w", err)
	}
	return table, nil
}

// Write replaces the boards table with the given session table inside a
// single transaction.
func (ss *SQLiteStore) Write(sessions map[string]canvas.Snapshot) error {
	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM boards"); err != nil {
		return fmt.Errorf("failed to clear boards: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO boards (id, history) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, snap := range sessions {
		historyJSON, err := json.Marshal(snap.History)
		if err != nil {
			return fmt.Errorf("failed to marshal history for session %s: %w", id, err)
		}
		if _, err := stmt.Exec(id, string(historyJSON)); err != nil {
			return fmt.Errorf("failed to insert session %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
