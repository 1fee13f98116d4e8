package memory

import (
	"context"
	"sync"

	"arquiz-service/internal/domain"
)

// SaveStore keeps saves for the life of the process.
type SaveStore struct {
	mu    sync.RWMutex
	saves map[string]domain.SaveData
}

func NewSaveStore() *SaveStore {
	return &SaveStore{saves: make(map[string]domain.SaveData)}
}

func (s *SaveStore) Save(_ context.Context, playerID string, data domain.SaveData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[playerID] = data
	return nil
}

func (s *SaveStore) Load(_ context.Context, playerID string) (domain.SaveData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.saves[playerID]
	if !ok {
		return domain.SaveData{}, domain.ErrSaveNotFound
	}
	return data, nil
}
