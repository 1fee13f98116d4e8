package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"arquiz-service/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SaveStore keeps saves in a local SQLite file, the single-host counterpart of the Redis
// and Postgres stores.
type SaveStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSaveStore(path string) (*SaveStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "saves.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SaveStore{db: db, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SaveStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS saves (
		player_id TEXT PRIMARY KEY,
		score INTEGER NOT NULL,
		elapsed_total REAL NOT NULL,
		updated_at_unix INTEGER NOT NULL
	);`)
	return err
}

func (s *SaveStore) Save(ctx context.Context, playerID string, data domain.SaveData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (player_id, score, elapsed_total, updated_at_unix)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			score = excluded.score,
			elapsed_total = excluded.elapsed_total,
			updated_at_unix = excluded.updated_at_unix`,
		playerID, data.Score, data.ElapsedTotal, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *SaveStore) Load(ctx context.Context, playerID string) (domain.SaveData, error) {
	var data domain.SaveData
	err := s.db.QueryRowContext(ctx,
		`SELECT score, elapsed_total FROM saves WHERE player_id = ?`, playerID,
	).Scan(&data.Score, &data.ElapsedTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SaveData{}, domain.ErrSaveNotFound
	}
	if err != nil {
		return domain.SaveData{}, fmt.Errorf("load game: %w", err)
	}
	return data, nil
}

func (s *SaveStore) Close() error {
	return s.db.Close()
}
