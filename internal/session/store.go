package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// ErrNotFound is returned by a Store when no record exists for a hash.
var ErrNotFound = errors.New("session: record not found")

// Record is the durable form of a session.
//
// The raw bearer token is never persisted; records are keyed by its
// SHA-256 hash so a leaked store cannot be replayed against the APIs.
type Record struct {
	TokenHash string          `json:"token_hash"`
	User      domain.Identity `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired reports whether the record has expired at now.
func (r *Record) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store persists session records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save creates or replaces the record for rec.TokenHash.
	Save(ctx context.Context, rec Record) error

	// Get returns the record for tokenHash or ErrNotFound.
	// Expired records may still be returned; the Manager decides.
	Get(ctx context.Context, tokenHash string) (*Record, error)

	// Delete removes the record for tokenHash. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every record expired at now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Count reports the number of unexpired records at now.
	Count(ctx context.Context, now time.Time) (int, error)
}

// HashToken returns the hex-encoded SHA-256 hash of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
