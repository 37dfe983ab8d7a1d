// Package session owns the authentication session: the cookie that carries
// the bearer token, the server-side record that carries the identity, and
// the manager that keeps the two in step.
package session

import "time"

const (
	// CookieName is the name of the cookie that stores the bearer token.
	CookieName = "token"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// DefaultTTL is the session lifetime when none is configured (1 day).
	// Cookie MaxAge and record expiry are both derived from the same value.
	DefaultTTL = 24 * time.Hour
)
