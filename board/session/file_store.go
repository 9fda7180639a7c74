package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sketchsync/sketchboard/board/canvas"
)

// FileStore persists the whole session table as one JSON object mapping
// session id to its snapshot. Every flush rewrites the file in full.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store, ensuring the parent directory
// exists.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sessions file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the session table from disk. A missing or empty file yields an
// empty table; a malformed file is reported to the caller.
func (fs *FileStore) Load() (map[string]canvas.Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var table map[string]canvas.Snapshot
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file: %w", err)
	}

	// The map key is authoritative for the id; older files may omit the
	// embedded one.
	for id, snap := range table {
		if snap.ID == "" {
			snap.ID = id
			table[id] = snap
		}
	}
	return table, nil
}

// Write replaces the file contents with the given session table.
func (fs *FileStore) Write(sessions map[string]canvas.Snapshot) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (fs *FileStore) Close() error {
	return nil
}
