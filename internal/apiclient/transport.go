package apiclient

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource returns the bearer token for the request context, if any.
// auth.Token is the implementation used by the server.
type TokenSource func(ctx context.Context) (string, bool)

// BearerTransport attaches the caller's bearer token to outgoing requests.
//
// The token is read from the request context at dispatch time, never from
// shared state, so concurrent requests for different users cannot leak
// each other's credentials. Requests without a token pass through
// unchanged. Errors from the base transport are returned as-is: no retry,
// no refresh.
type BearerTransport struct {
	Base   http.RoundTripper
	Source TokenSource
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source != nil {
		if token, ok := t.Source(req.Context()); ok && token != "" {
			// RoundTrippers must not modify the request they were given.
			req = req.Clone(req.Context())
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}
	return t.base().RoundTrip(req)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

var _ http.RoundTripper = (*BearerTransport)(nil)
