package pgstate

// Package pgstate provides a Postgres-backed state store for durable
// multi-device carts: one row per (owner, key) in a plain key-value table.

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/mizan-mobiles/storefront-go/internal/errors"
)

// Store is a Postgres-backed state store. Rows are scoped by owner so one
// table serves many users/devices.
type Store struct {
	db    *sql.DB
	owner string
}

// New creates a Postgres state store scoped to the given owner.
func New(db *sql.DB, owner string) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	return &Store{db: db, owner: owner}, nil
}

// Migrate creates the state table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS storefront_state (
			owner      TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			data       JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (owner, key)
		)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Save upserts the entry for key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}

	const q = `
		INSERT INTO storefront_state (owner, key, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner, key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, q, s.owner, key, data); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Get reads the entry for key. A missing entry returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("state key cannot be empty")
	}

	const q = `SELECT data FROM storefront_state WHERE owner = $1 AND key = $2`
	var data []byte
	err := s.db.QueryRowContext(ctx, q, s.owner, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return data, nil
}

// Delete removes the entry for key; deleting an absent entry is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	const q = `DELETE FROM storefront_state WHERE owner = $1 AND key = $2`
	if _, err := s.db.ExecContext(ctx, q, s.owner, key); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
