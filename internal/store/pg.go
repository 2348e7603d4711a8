package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG stores blobs in a single kv_blobs table.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.pool.QueryRow(ctx, "SELECT val FROM kv_blobs WHERE key = $1", key).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blob read failed: %w", err)
	}
	return val, true, nil
}

func (s *PG) Write(ctx context.Context, key string, val []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_blobs (key, val) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET val = EXCLUDED.val, updated_at = NOW()
	`, key, val)
	if err != nil {
		return fmt.Errorf("blob write failed: %w", err)
	}
	return nil
}

func (s *PG) WriteIfAbsent(ctx context.Context, key string, val []byte) (bool, error) {
	// ON CONFLICT DO NOTHING makes the claim atomic: exactly one of two
	// racing writers observes RowsAffected == 1.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO kv_blobs (key, val) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, val)
	if err != nil {
		return false, fmt.Errorf("blob claim failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
