package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// jsonObject is a decoded JSON object whose fields are read one at a time,
// so a field of an unexpected type never hides the others.
type jsonObject map[string]json.RawMessage

// decodeObject returns the fields of body when it is a JSON object.
func decodeObject(body []byte) (jsonObject, bool) {
	var obj jsonObject
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// str returns the string value of key, or "" when it is missing or not a string.
func (o jsonObject) str(key string) string {
	var v string
	if raw, ok := o[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// object returns the nested object at key, or nil.
func (o jsonObject) object(key string) jsonObject {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	obj, _ := decodeObject(raw)
	return obj
}

// firstString returns the first non-empty string among keys.
func (o jsonObject) firstString(keys ...string) string {
	for _, k := range keys {
		if v := o.str(k); v != "" {
			return v
		}
	}
	return ""
}

// loginToken finds the bearer token in the shapes the auth API has been
// seen to return.
func loginToken(obj jsonObject) string {
	if t := obj.firstString("token", "access_token", "id_token"); t != "" {
		return t
	}
	if data := obj.object("data"); data != nil {
		return data.firstString("token", "access_token")
	}
	return ""
}

// Login exchanges credentials for a bearer token.
//
// The credentials travel as query parameters on a POST, which is what the
// auth API accepts. A non-JSON body on success is taken to be the token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	const op = "apiclient.Login"

	query := url.Values{}
	query.Set("email", creds.Email)
	query.Set("password", creds.Password)
	query.Set("role", creds.Role)

	resp, err := c.roundTrip(ctx, request{
		op:      op,
		service: ServiceAuth,
		method:  http.MethodPost,
		base:    c.config.AuthURL,
		path:    "/login",
		query:   query,
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(resp.body))
	obj, isObject := decodeObject(resp.body)

	if resp.status < 200 || resp.status > 299 {
		message := "Login failed"
		switch {
		case isObject && obj.firstString("message", "error") != "":
			message = obj.firstString("message", "error")
		case text != "":
			message = errorMessage(resp.body, resp.status)
		}
		apiErr := &Error{Service: ServiceAuth, StatusCode: resp.status, Message: message}
		return nil, domain.Wrap(apiErr, apiErr.Code(), op, message)
	}

	var token string
	switch {
	case isObject:
		token = loginToken(obj)
	case text != "" && !json.Valid(resp.body):
		token = text
	case strings.HasPrefix(text, `"`):
		_ = json.Unmarshal(resp.body, &token)
	}
	if token == "" {
		return nil, domain.Unauthorized(op, "Login succeeded but no token was returned")
	}

	user := &domain.Identity{Email: creds.Email, Role: creds.Role}
	if u := obj.object("user"); u != nil {
		if email := u.str("email"); email != "" {
			user.Email = email
		}
		if role := u.str("role"); role != "" {
			user.Role = role
		}
		user.Name = u.str("name")
		if user.Name == "" {
			user.Name = strings.TrimSpace(u.str("firstName") + " " + u.str("lastName"))
		}
	}

	return &domain.LoginResult{User: user, Token: token}, nil
}

// Logout tells the auth API to revoke the token in ctx. Callers clear the
// local session whatever this returns.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{
		op:      "apiclient.Logout",
		service: ServiceAuth,
		method:  http.MethodPost,
		base:    c.config.AuthURL,
		path:    "/auth/logout",
	})
	return err
}
