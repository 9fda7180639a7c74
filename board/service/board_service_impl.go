package service

import (
	"context"
	"sort"
	"sync"

	"github.com/sketchsync/sketchboard/board/canvas"
)

// boardService implements BoardService on top of a SessionRepository.
//
// Callers arrive from the websocket hub loop and from HTTP handler
// goroutines. Live sessions are not safe for concurrent mutation, so every
// operation runs under one mutex; this also keeps read-modify-persist
// sequences atomic with respect to each other.
type boardService struct {
	mu   sync.Mutex
	repo SessionRepository
}

// NewBoardService creates the board service.
func NewBoardService(repo SessionRepository) BoardService {
	return &boardService{repo: repo}
}

func (s *boardService) Join(ctx context.Context, sessionID string) (*JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	return &JoinResult{SessionID: sess.ID(), History: sess.History()}, nil
}

func (s *boardService) RecordStroke(ctx context.Context, sessionID string, action canvas.Action) (*StrokeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	stored, err := sess.AddStroke(action)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(sess); err != nil {
		return nil, err
	}

	return &StrokeResult{Action: stored, History: sess.History()}, nil
}

func (s *boardService) Clear(ctx context.Context, sessionID string) (*ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Clear()
	if err := s.repo.Save(sess); err != nil {
		return nil, err
	}

	return &ClearResult{History: sess.History()}, nil
}

func (s *boardService) Undo(ctx context.Context, sessionID, userID string) (*UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	undone := sess.UndoByUser(userID)
	// A no-op undo changes nothing, so nothing is persisted.
	if undone {
		if err := s.repo.Save(sess); err != nil {
			return nil, err
		}
	}

	return &UndoResult{Undone: undone, History: sess.History()}, nil
}

func (s *boardService) History(ctx context.Context, sessionID string) ([]canvas.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

func (s *boardService) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.repo.List()

	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, summarize(sess))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (s *boardService) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		return canvas.ErrEmptySessionID
	}
	if _, ok := s.repo.Get(sessionID); !ok {
		return ErrSessionNotFound
	}
	s.repo.Delete(sessionID)
	return nil
}

func summarize(sess *canvas.Session) *SessionInfo {
	strokes := make(map[string]bool)
	users := make(map[string]bool)
	history := sess.History()
	for _, a := range history {
		if a.StrokeID != "" {
			strokes[a.StrokeID] = true
		}
		if a.UserID != "" {
			users[a.UserID] = true
		}
	}
	return &SessionInfo{
		ID:      sess.ID(),
		Actions: len(history),
		Strokes: len(strokes),
		Users:   len(users),
	}
}
