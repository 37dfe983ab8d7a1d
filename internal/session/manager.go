package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Load when the request carries no usable
// session: no cookie, no record, or an expired record.
var ErrNoSession = errors.New("session: no active session")

// Manager is the single source of truth for "is this request signed in".
//
// The cookie carries the bearer token; the store carries the identity and
// expiry. A session exists only while both agree, so a cookie the browser
// has dropped can never leave a stale authenticated state behind.
type Manager struct {
	store   Store
	cookies *Cookies
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Config holds configuration for the session manager.
type Config struct {
	TTL    time.Duration // lifetime of cookie and record; DefaultTTL if zero
	Secure bool          // set the Secure flag on the cookie
}

// NewManager creates a session manager over store.
func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:   store,
		cookies: NewCookies(ttl, cfg.Secure),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login records user against token and writes the token cookie.
//
// The session expires after the configured TTL, or earlier if the token is
// a JWT whose exp claim comes first. The claim is read without verifying
// the signature: the remote API remains the authority on the token, this
// only avoids holding a session the API will reject anyway.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, user *domain.Identity, token string) (*domain.Session, error) {
	const op = "session.Login"

	if token == "" {
		return nil, domain.Invalid(op, "token is required")
	}
	if user == nil || user.Email == "" {
		return nil, domain.Invalid(op, "user identity is required")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	if exp, ok := TokenExpiry(token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	if !expiresAt.After(now) {
		return nil, domain.Unauthorized(op, "The issued token has already expired")
	}

	rec := Record{
		TokenHash: HashToken(token),
		User:      *user,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, domain.Internal(err, op, "failed to save session")
	}

	m.cookies.saveToken(w, token, expiresAt.Sub(now))
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()

	return &domain.Session{
		Token:     token,
		User:      &rec.User,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// Load returns the session for the request.
//
// Returns ErrNoSession when there is no cookie, no record for it, or the
// record has expired. Expired records are deleted on sight. Any other
// error is a store failure.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*domain.Session, error) {
	token, ok := m.cookies.ReadToken(r)
	if !ok {
		return nil, ErrNoSession
	}

	hash := HashToken(token)
	rec, err := m.store.Get(ctx, hash)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if rec.IsExpired(m.now()) {
		if err := m.store.Delete(ctx, hash); err != nil {
			m.logger.Warn("failed to delete expired session", "error", err)
		}
		metrics.SessionEventsTotal.WithLabelValues("expired").Inc()
		return nil, ErrNoSession
	}

	user := rec.User
	return &domain.Session{
		Token:     token,
		User:      &user,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Logout deletes the record for the request's token and clears the cookie.
//
// It is idempotent: without a session it only clears the cookie. The
// cookie is cleared even when the store fails; the store error is returned
// for logging.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.cookies.RemoveToken(w)

	token, ok := m.cookies.ReadToken(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, HashToken(token)); err != nil {
		return domain.Internal(err, "session.Logout", "failed to delete session")
	}
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return nil
}

// Clear removes the token cookie without touching the store. The route
// guard uses it when a cookie no longer maps to a session.
func (m *Manager) Clear(w http.ResponseWriter) {
	m.cookies.RemoveToken(w)
}

// Restore prepares the store after a restart: expired records are purged
// and the number of live sessions is reported. Live sessions become usable
// again as soon as their browser presents the cookie.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	now := m.now()
	removed, err := m.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	live, err := m.store.Count(ctx, now)
	if err != nil {
		return 0, err
	}
	m.logger.Info("sessions restored", "live", live, "purged", removed)
	metrics.SessionsRestored.Set(float64(live))
	return live, nil
}

// TokenExpiry returns the exp claim of a JWT without verifying it.
// ok is false when the token is not a JWT or carries no exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}
