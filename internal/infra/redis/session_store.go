package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"arquiz-service/internal/game"
	"github.com/redis/go-redis/v9"
)

// deleteIfMatches drops the liveness marker only while it still names the given game.
var deleteIfMatches = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions carry live timers, so they stay in a local map driven by this
//     process's frame loop.
//   - Redis holds a liveness marker per player with the current game id, so other
//     instances can tell where a player is playing. KeepAlive re-arms the markers
//     of live games; Redis is never called under the map lock.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) *game.Session {
	s.mu.Lock()
	previous := s.sessions[session.PlayerID()]
	s.sessions[session.PlayerID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.PlayerID()), session.ID(), s.ttl).Err()
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
	session, ok := s.sessions[playerID]
	if !ok || session.ID() != gameID {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, playerID)
	s.mu.Unlock()

	_ = deleteIfMatches.Run(context.Background(), s.client, []string{s.key(playerID)}, gameID).Err()
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

// Refresh rewrites the marker of every live session with a fresh TTL.
func (s *SessionStore) Refresh(ctx context.Context) error {
	sessions := s.All()
	if len(sessions) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, session := range sessions {
			pipe.Set(ctx, s.key(session.PlayerID()), session.ID(), s.ttl)
		}
		return nil
	})
	return err
}

// KeepAlive refreshes the markers at half the TTL until ctx is cancelled.
func (s *SessionStore) KeepAlive(ctx context.Context) error {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Printf("refresh session markers: %v", err)
			}
		}
	}
}

func (s *SessionStore) key(playerID string) string {
	return "game:session:" + playerID
}
