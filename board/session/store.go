package session

import (
	"errors"

	"github.com/sketchsync/sketchboard/board/canvas"
)

var ErrNilSession = errors.New("session cannot be nil")

// Store is the durable backing for a Repository. Load is called once at
// construction to rehydrate; Write replaces the entire stored table with
// the given snapshot map.
type Store interface {
	// Load returns all persisted sessions keyed by id. A store with no
	// prior data returns an empty (or nil) map and no error.
	Load() (map[string]canvas.Snapshot, error)

	// Write replaces the durable copy with the given session table.
	Write(sessions map[string]canvas.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}
