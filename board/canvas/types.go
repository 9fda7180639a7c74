package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptySessionID = errors.New("session id is required")
	ErrInvalidAction  = errors.New("invalid action")
)

// DefaultStrokeLimit is the stroke retention bound applied when no limit is
// configured.
const DefaultStrokeLimit = 300

// Action represents a single drawing action within a session history.
// Segment is an opaque JSON value; the server only requires its presence
// and never interprets coordinates, color, or sizing metadata.
type Action struct {
	Segment  json.RawMessage `json:"segment"`
	StrokeID string          `json:"strokeId"`
	UserID   string          `json:"userId"`
}

var jsonNull = []byte("null")

// Validate checks that the action carries everything a session requires to
// store and later undo it.
func (a Action) Validate() error {
	if len(a.Segment) == 0 || bytes.Equal(bytes.TrimSpace(a.Segment), jsonNull) {
		return fmt.Errorf("%w: segment is required", ErrInvalidAction)
	}
	if a.StrokeID == "" {
		return fmt.Errorf("%w: strokeId is required", ErrInvalidAction)
	}
	if a.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidAction)
	}
	return nil
}

// Clone returns an independent copy of the action, including its segment
// bytes.
func (a Action) Clone() Action {
	c := a
	if a.Segment != nil {
		c.Segment = append(json.RawMessage(nil), a.Segment...)
	}
	return c
}

// CloneActions deep-copies a history slice.
func CloneActions(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}

// Snapshot is the persistable form of a session: its id and full history.
// The stroke limit is runtime configuration and is reapplied on load, so it
// is deliberately not part of the snapshot.
type Snapshot struct {
	ID      string   `json:"id"`
	History []Action `json:"history"`
}
