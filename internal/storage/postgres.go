package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by a single key-value table. Row-level
// upserts give the per-key atomicity the bridge relies on.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore creates a store over the given pool and ensures the
// backing table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is required")
	}
	s := &PostgresStore{pool: pool, table: "handoff_state"}
	if _, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table)); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT key, value FROM %s WHERE key = ANY($1)", s.table), keys)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) Write(ctx context.Context, items map[string][]byte) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for key, value := range items {
		batch.Queue(fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			s.table), key, value)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE key = ANY($1)", s.table), keys); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
