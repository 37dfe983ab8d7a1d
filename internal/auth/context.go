// Package auth provides authentication context helpers.
//
// This package is designed to be imported by the middleware, handler and
// apiclient packages without causing import cycles. The session travels in
// the request context explicitly; nothing reads it from package state.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the key used to store the loaded session in context.
	sessionContextKey contextKey = "session"
)

// GetSession retrieves the authenticated session from the context.
//
// Returns nil if no session was loaded or it is no longer authenticated.
func GetSession(ctx context.Context) *domain.Session {
	sess, ok := ctx.Value(sessionContextKey).(*domain.Session)
	if !ok || !sess.IsAuthenticated() {
		return nil
	}
	return sess
}

// GetUser retrieves the authenticated user from the context.
//
// Usage:
//
//	user := auth.GetUser(r.Context())
//	if user == nil {
//	    // Handle unauthenticated request
//	}
func GetUser(ctx context.Context) *domain.Identity {
	if sess := GetSession(ctx); sess != nil {
		return sess.User
	}
	return nil
}

// GetUserFromRequest retrieves the authenticated user from the request context.
func GetUserFromRequest(r *http.Request) *domain.Identity {
	return GetUser(r.Context())
}

// Token returns the bearer token of the session in ctx, if any.
// It satisfies apiclient.TokenSource.
func Token(ctx context.Context) (string, bool) {
	if sess := GetSession(ctx); sess != nil {
		return sess.Token, true
	}
	return "", false
}

// SetSession stores a session in the context.
//
// This is called by the route guard after the session has been loaded from
// the cookie and the session store.
func SetSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
