package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"arquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ContentStore reads and writes content documents kept as JSONB in Postgres.
type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

func (s *ContentStore) LoadContent(ctx context.Context, contentID string) (domain.Content, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM contents WHERE id=$1`, contentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Content{}, domain.ErrContentNotFound
	}
	if err != nil {
		return domain.Content{}, fmt.Errorf("load content: %w", err)
	}
	var content domain.Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return domain.Content{}, fmt.Errorf("unmarshal content: %w", err)
	}
	return content, nil
}

// SaveContent inserts or replaces a content document.
func (s *ContentStore) SaveContent(ctx context.Context, content domain.Content) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contents (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		content.ID, string(raw))
	if err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	return nil
}
