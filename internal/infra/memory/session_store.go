package memory

import (
	"sync"

	"arquiz-service/internal/game"
)

// SessionStore is an in-memory implementation of app.SessionRepository, one session per player.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
	}
}

// Put stores session under its player and returns the session it replaced, if any.
func (s *SessionStore) Put(session *game.Session) *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.sessions[session.PlayerID()]
	s.sessions[session.PlayerID()] = session
	return previous
}

func (s *SessionStore) Get(playerID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	return session, ok
}

// DeleteIf removes the player's session only while it is still game gameID.
func (s *SessionStore) DeleteIf(playerID, gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[playerID]
	if !ok || session.ID() != gameID {
		return false
	}
	delete(s.sessions, playerID)
	return true
}

func (s *SessionStore) All() []*game.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*game.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		all = append(all, session)
	}
	return all
}
