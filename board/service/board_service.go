package service

import (
	"context"
	"errors"

	"github.com/sketchsync/sketchboard/board/canvas"
)

var ErrSessionNotFound = errors.New("session not found")

// BoardService defines all drawing-board operations.
type BoardService interface {
	// Join resolves (creating if needed) the session and returns its
	// current history.
	Join(ctx context.Context, sessionID string) (*JoinResult, error)

	// RecordStroke appends a drawing action to the session. The action's
	// UserID must already be set by the transport.
	RecordStroke(ctx context.Context, sessionID string, action canvas.Action) (*StrokeResult, error)

	// Clear empties the session history.
	Clear(ctx context.Context, sessionID string) (*ClearResult, error)

	// Undo removes userID's most recent stroke, if any.
	Undo(ctx context.Context, sessionID, userID string) (*UndoResult, error)

	// History returns the session's current history without mutating it.
	History(ctx context.Context, sessionID string) ([]canvas.Action, error)

	// ListSessions summarizes every live session.
	ListSessions(ctx context.Context) ([]*SessionInfo, error)

	// DeleteSession removes a session and its durable copy.
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionRepository defines the session storage operations the use cases
// need. *session.Repository satisfies it.
type SessionRepository interface {
	Get(id string) (*canvas.Session, bool)
	GetOrCreate(id string) (*canvas.Session, error)
	Save(sess *canvas.Session) error
	Delete(id string)
	List() []*canvas.Session
	Flush() error
}

// JoinResult is the outcome of joining a session.
type JoinResult struct {
	SessionID string          `json:"sessionId"`
	History   []canvas.Action `json:"history"`
}

// StrokeResult carries the stored action (as normalized by the session) and
// the resulting history.
type StrokeResult struct {
	Action  canvas.Action   `json:"action"`
	History []canvas.Action `json:"history"`
}

// ClearResult is the (empty) history after a clear.
type ClearResult struct {
	History []canvas.Action `json:"history"`
}

// UndoResult reports whether a stroke was removed and the resulting
// history.
type UndoResult struct {
	Undone  bool            `json:"undone"`
	History []canvas.Action `json:"history"`
}

// SessionInfo summarizes one session for listings.
type SessionInfo struct {
	ID      string `json:"id"`
	Actions int    `json:"actions"`
	Strokes int    `json:"strokes"`
	Users   int    `json:"users"`
}
