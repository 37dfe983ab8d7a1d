package auth

import (
	"net/url"
	"strings"
)

// LoginPath is the sign-in page. Returning to it after signing in would loop.
const LoginPath = "/login"

// IsSafeReturnPath reports whether p is a same-site path worth returning to
// after sign-in. Absolute URLs, protocol-relative URLs and the login page
// itself are rejected.
func IsSafeReturnPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return false
	}

	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}

	return u.Path != LoginPath
}
