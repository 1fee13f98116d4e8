package redis

import (
	"context"
	"fmt"
	"strconv"

	"arquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SaveStore keeps one hash per player: HSET save:{playerID} score {n} elapsedTotal {seconds}
type SaveStore struct {
	client *redis.Client
}

func NewSaveStore(client *redis.Client) *SaveStore {
	return &SaveStore{client: client}
}

func (s *SaveStore) Save(ctx context.Context, playerID string, data domain.SaveData) error {
	err := s.client.HSet(ctx, s.key(playerID),
		"score", data.Score,
		"elapsedTotal", strconv.FormatFloat(data.ElapsedTotal, 'f', -1, 64),
	).Err()
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *SaveStore) Load(ctx context.Context, playerID string) (domain.SaveData, error) {
	fields, err := s.client.HGetAll(ctx, s.key(playerID)).Result()
	if err != nil {
		return domain.SaveData{}, fmt.Errorf("load game: %w", err)
	}
	if len(fields) == 0 {
		return domain.SaveData{}, domain.ErrSaveNotFound
	}
	score, err := strconv.Atoi(fields["score"])
	if err != nil {
		return domain.SaveData{}, fmt.Errorf("parse saved score: %w", err)
	}
	elapsed, err := strconv.ParseFloat(fields["elapsedTotal"], 64)
	if err != nil {
		return domain.SaveData{}, fmt.Errorf("parse saved time: %w", err)
	}
	return domain.SaveData{Score: score, ElapsedTotal: elapsed}, nil
}

func (s *SaveStore) key(playerID string) string {
	return "save:" + playerID
}
