// Package profile provides goVerify.ProfileStore implementations.
package profile

import (
	"context"
	"errors"
	"fmt"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createProfilesSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	account_id    TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const getPasswordHashSQL = `SELECT password_hash FROM profiles WHERE account_id = $1`

const upsertProfileSQL = `
INSERT INTO profiles (account_id, password_hash)
VALUES ($1, $2)
ON CONFLICT (account_id) DO UPDATE
SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
`

// DBTX is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads password digests from the profiles table.
type Postgres struct {
	db DBTX
}

var _ goVerify.ProfileStore = (*Postgres)(nil)

// NewPostgres returns a store over db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the profiles table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createProfilesSQL); err != nil {
		return fmt.Errorf("%w: %w", goVerify.ErrProfileUnavailable, err)
	}
	return nil
}

// PasswordHash reads the hash row for accountID. A missing row is
// [goVerify.ErrProfileNotFound]; any other failure is
// [goVerify.ErrProfileUnavailable].
func (p *Postgres) PasswordHash(ctx context.Context, accountID string) (string, error) {
	var hash string
	if err := p.db.QueryRow(ctx, getPasswordHashSQL, accountID).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", goVerify.ErrProfileNotFound
		}
		return "", fmt.Errorf("%w: %w", goVerify.ErrProfileUnavailable, err)
	}
	return hash, nil
}

// Put inserts or replaces the stored digest for accountID.
func (p *Postgres) Put(ctx context.Context, accountID, passwordHash string) error {
	if _, err := p.db.Exec(ctx, upsertProfileSQL, accountID, passwordHash); err != nil {
		return fmt.Errorf("%w: %w", goVerify.ErrProfileUnavailable, err)
	}
	return nil
}
