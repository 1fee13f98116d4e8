package app

import (
	"context"
	"log"
	"time"

	"arquiz-service/internal/domain"
	"arquiz-service/internal/game"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *game.Session) (previous *game.Session)
	Get(playerID string) (*game.Session, bool)
	// DeleteIf removes the player's session only while it is still game gameID.
	DeleteIf(playerID, gameID string) bool
	All() []*game.Session
}

// ContentRepository loads question content (from cache/backing store).
type ContentRepository interface {
	GetContent(ctx context.Context, contentID string) (domain.Content, error)
}

// SaveStore persists the score and elapsed time of a player's game.
type SaveStore interface {
	Save(ctx context.Context, playerID string, data domain.SaveData) error
	Load(ctx context.Context, playerID string) (domain.SaveData, error)
}

// GameService contains the game use cases the transports call into.
type GameService struct {
	sessions SessionRepository
	contents ContentRepository
	saves    SaveStore
	rules    game.Rules
	opts     []game.Option
}

func NewGameService(sessions SessionRepository, contents ContentRepository, saves SaveStore, rules game.Rules, opts ...game.Option) *GameService {
	return &GameService{
		sessions: sessions,
		contents: contents,
		saves:    saves,
		rules:    rules,
		opts:     opts,
	}
}

// NewGame discards any session the player has and starts a fresh one on the given content.
func (s *GameService) NewGame(ctx context.Context, playerID, contentID string) (domain.Snapshot, error) {
	content, err := s.contents.GetContent(ctx, contentID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	session, err := game.NewSession(playerID, content, s.rules, s.opts...)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if previous := s.sessions.Put(session); previous != nil {
		previous.Close()
	}
	session.Start()
	log.Printf("player %s started game %s on content %s", playerID, session.ID(), contentID)
	return session.Snapshot(), nil
}

// SelectAlternative answers the current multiple-choice question. Ignored answers are not errors.
func (s *GameService) SelectAlternative(_ context.Context, playerID string, index int) (domain.Snapshot, bool, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, false, domain.ErrSessionNotFound
	}
	accepted := session.SelectAlternative(index)
	return session.Snapshot(), accepted, nil
}

// IdentifyTarget reports a recognised image target for the player's current question.
func (s *GameService) IdentifyTarget(_ context.Context, playerID string) (domain.Snapshot, bool, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, false, domain.ErrSessionNotFound
	}
	accepted := session.IdentifyTarget()
	return session.Snapshot(), accepted, nil
}

// Subscribe returns a channel of game events for a player.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, playerID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Pause stops the player's clock until Resume.
func (s *GameService) Pause(_ context.Context, playerID string) error {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Deactivate()
	return nil
}

func (s *GameService) Resume(_ context.Context, playerID string) error {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Activate()
	return nil
}

// Snapshot returns the player's current state.
func (s *GameService) Snapshot(_ context.Context, playerID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// SetInitials names the player on the game-over leaderboard.
func (s *GameService) SetInitials(_ context.Context, playerID, initials string) error {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.SetInitials(initials)
}

// GameOver returns the leaderboard of a finished game.
func (s *GameService) GameOver(_ context.Context, playerID string) (domain.Leaderboard, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Leaderboard{}, domain.ErrSessionNotFound
	}
	return session.Leaderboard()
}

// Save persists the live session's score and elapsed time.
func (s *GameService) Save(ctx context.Context, playerID string) (domain.SaveData, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.SaveData{}, domain.ErrSessionNotFound
	}
	data := session.SaveData()
	if err := s.saves.Save(ctx, playerID, data); err != nil {
		return domain.SaveData{}, err
	}
	log.Printf("player %s saved score %d", playerID, data.Score)
	return data, nil
}

// Load reads the last saved game of a player.
func (s *GameService) Load(ctx context.Context, playerID string) (domain.SaveData, error) {
	return s.saves.Load(ctx, playerID)
}

// CurrentGame returns the id of the player's live game.
func (s *GameService) CurrentGame(_ context.Context, playerID string) (string, bool) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return "", false
	}
	return session.ID(), true
}

// Leave closes and forgets game gameID of the player. A game that already replaced it is left alone.
func (s *GameService) Leave(_ context.Context, playerID, gameID string) {
	session, ok := s.sessions.Get(playerID)
	if !ok || session.ID() != gameID {
		return
	}
	if s.sessions.DeleteIf(playerID, gameID) {
		session.Close()
	}
}

// Tick advances every live session; the frame loop calls it.
func (s *GameService) Tick(dt time.Duration) {
	for _, session := range s.sessions.All() {
		session.Tick(dt)
	}
}
