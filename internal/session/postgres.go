package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists records in the sessions table created by the
// embedded migrations. It works with any database/sql driver speaking
// Postgres; the server registers pgx.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open, migrated database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertSessionSQL = `
INSERT INTO sessions (token_hash, email, role, name, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (token_hash) DO UPDATE
SET email = EXCLUDED.email,
    role = EXCLUDED.role,
    name = EXCLUDED.name,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at`

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, upsertSessionSQL,
		rec.TokenHash,
		rec.User.Email,
		rec.User.Role,
		rec.User.Name,
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tokenHash string) (*Record, error) {
	rec := Record{TokenHash: tokenHash}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, role, name, created_at, expires_at FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&rec.User.Email, &rec.User.Role, &rec.User.Name, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) Count(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sessions WHERE expires_at > $1`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

var _ Store = (*PostgresStore)(nil)

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
