package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_events (
    id BIGSERIAL PRIMARY KEY,
    room_code TEXT NOT NULL,
    kind TEXT NOT NULL,
    player_id TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_room_events_room_code ON room_events(room_code, created_at);
`

// PostgresStore implements EventStore using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Append inserts a new event.
func (s *PostgresStore) Append(ctx context.Context, ev RoomEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO room_events (room_code, kind, player_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ev.RoomCode, ev.Kind, ev.PlayerID, ev.Detail, ev.CreatedAt)
	return err
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
