package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"arquiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type saveRecord struct {
	bun.BaseModel `bun:"table:saves"`

	PlayerID     string    `bun:"player_id,pk"`
	Score        int       `bun:"score,notnull"`
	ElapsedTotal float64   `bun:"elapsed_total,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// SaveStore persists saves through bun.
type SaveStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewSaveStore(db *bun.DB) *SaveStore {
	return &SaveStore{db: db, now: time.Now}
}

func (s *SaveStore) Save(ctx context.Context, playerID string, data domain.SaveData) error {
	rec := &saveRecord{
		PlayerID:     playerID,
		Score:        data.Score,
		ElapsedTotal: data.ElapsedTotal,
		UpdatedAt:    s.now(),
	}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (player_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("elapsed_total = EXCLUDED.elapsed_total").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *SaveStore) Load(ctx context.Context, playerID string) (domain.SaveData, error) {
	var rec saveRecord
	err := s.db.NewSelect().Model(&rec).Where("player_id = ?", playerID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SaveData{}, domain.ErrSaveNotFound
	}
	if err != nil {
		return domain.SaveData{}, fmt.Errorf("load game: %w", err)
	}
	return domain.SaveData{Score: rec.Score, ElapsedTotal: rec.ElapsedTotal}, nil
}
