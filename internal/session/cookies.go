package session

import (
	"net/http"
	"time"
)

// Cookies reads and writes the auth token cookie.
//
// Cookie Settings:
// - HttpOnly: true - the token is never readable by page scripts
// - Secure: configurable - set true in production (HTTPS only)
// - SameSite: Lax - sent on top-level navigation, not on cross-site posts
// - Path: / - sent with all requests
//
// The value is stored verbatim; no format or expiry validation happens here.
type Cookies struct {
	TTL    time.Duration
	Secure bool
}

// NewCookies creates a cookie adapter. A non-positive ttl uses DefaultTTL.
func NewCookies(ttl time.Duration, secure bool) *Cookies {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cookies{TTL: ttl, Secure: secure}
}

// SaveToken writes the token cookie with the configured lifetime.
func (c *Cookies) SaveToken(w http.ResponseWriter, token string) {
	c.saveToken(w, token, c.TTL)
}

// saveToken writes the token cookie with an explicit lifetime, rounded up
// to whole seconds so a sub-second remainder never becomes MaxAge 0.
func (c *Cookies) saveToken(w http.ResponseWriter, token string, ttl time.Duration) {
	maxAge := int((ttl + time.Second - 1) / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RemoveToken deletes the token cookie by setting MaxAge to -1, which tells
// the browser to drop it immediately.
func (c *Cookies) RemoveToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadToken returns the token cookie value. An empty value counts as absent.
func (c *Cookies) ReadToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
