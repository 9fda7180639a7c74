package canvas

// Session is one collaborative drawing room: an id plus its bounded,
// insertion-ordered action history.
type Session struct {
	id          string
	strokeLimit int
	history     []Action
}

// NewSession constructs a session, deep-copying any supplied history and
// applying the stroke limit to it. The id is assigned by the caller and must
// be non-empty; the entity never generates ids.
func NewSession(id string, history []Action, strokeLimit int) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	s := &Session{
		id:          id,
		strokeLimit: strokeLimit,
		history:     CloneActions(history),
	}
	s.enforceStrokeLimit()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StrokeLimit returns the configured retention bound.
func (s *Session) StrokeLimit() int {
	return s.strokeLimit
}

// AddStroke validates the action, appends a defensive copy, re-applies the
// stroke limit, and returns a copy of the action as stored.
func (s *Session) AddStroke(action Action) (Action, error) {
	if err := action.Validate(); err != nil {
		return Action{}, err
	}
	s.history = append(s.history, action.Clone())
	s.enforceStrokeLimit()
	return s.history[len(s.history)-1].Clone(), nil
}

// Clear resets the history to empty.
func (s *Session) Clear() {
	s.history = nil
}

// UndoByUser removes the most recent stroke authored by userID. The whole
// stroke is removed: every action sharing the target stroke id, not just the
// newest one. It reports whether anything was removed; an unknown user or
// empty history is a no-op.
func (s *Session) UndoByUser(userID string) bool {
	if userID == "" {
		return false
	}

	var target string
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].UserID == userID {
			target = s.history[i].StrokeID
			break
		}
	}
	if target == "" {
		return false
	}

	kept := s.history[:0]
	for _, a := range s.history {
		if a.StrokeID != target {
			kept = append(kept, a)
		}
	}
	s.history = kept
	return true
}

// History returns a deep copy of the action history in broadcast order.
func (s *Session) History() []Action {
	return CloneActions(s.history)
}

// Len returns the number of stored actions.
func (s *Session) Len() int {
	return len(s.history)
}

// Snapshot returns the persistable form of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{ID: s.id, History: s.History()}
}

// Clone returns an independent session with identical id, limit, and
// history.
func (s *Session) Clone() *Session {
	return &Session{
		id:          s.id,
		strokeLimit: s.strokeLimit,
		history:     CloneActions(s.history),
	}
}

// enforceStrokeLimit drops the oldest strokes once more than strokeLimit
// distinct stroke ids are present. It walks newest to oldest collecting ids
// to keep, then filters the history against that set, so all actions of a
// stroke live or die together. Actions without a stroke id (possible in
// hydrated legacy data) never count toward the limit and are dropped.
// A limit of zero or less disables eviction.
func (s *Session) enforceStrokeLimit() {
	if s.strokeLimit <= 0 {
		return
	}

	keep := make(map[string]bool, s.strokeLimit)
	for i := len(s.history) - 1; i >= 0 && len(keep) < s.strokeLimit; i-- {
		id := s.history[i].StrokeID
		if id == "" {
			continue
		}
		keep[id] = true
	}

	kept := s.history[:0]
	for _, a := range s.history {
		if keep[a.StrokeID] {
			kept = append(kept, a)
		}
	}
	s.history = kept
}
