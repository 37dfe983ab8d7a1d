// Package domain contains core business types and interfaces.
//
// This file defines the identity of the signed-in administrator and the
// session that binds it to a bearer token issued by the remote auth API.
package domain

import "time"

// RoleSuperAdmin is the only role allowed to sign in to the dashboard.
const RoleSuperAdmin = "Super Admin"

// Identity is what the dashboard knows about the signed-in user.
//
// The remote auth API is the authority for who the user is; the dashboard
// only keeps enough to render the layout and to attribute log lines.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// DisplayName returns the user's name or email if name is empty.
func (u *Identity) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session represents an authenticated session.
//
// Token is the raw bearer token presented to the remote APIs. It is only
// held in memory for the duration of a request; stores persist a hash.
type Session struct {
	Token     string
	User      *Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// IsAuthenticated is derived, never stored: a session counts only while it
// carries both a user and a token and has not expired.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil && s.Token != "" && !s.IsExpired()
}

// Credentials are the values submitted on the login form.
type Credentials struct {
	Email    string
	Password string
	Role     string
}

// LoginResult contains the result of a successful login against the auth API.
type LoginResult struct {
	User  *Identity
	Token string // Raw bearer token
}
