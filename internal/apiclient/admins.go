package apiclient

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

type adminRecord struct {
	ID        any    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ListAdmins returns every admin account known to the accounts API.
// Accounts without a creation time are stamped with the current time.
func (c *Client) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	const op = "apiclient.ListAdmins"

	var payload struct {
		Users []adminRecord `json:"users"`
	}
	if err := c.getJSON(ctx, op, ServiceAccounts, c.config.AuthURL, "/list_users", nil, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	admins := make([]domain.Admin, 0, len(payload.Users))
	for _, u := range payload.Users {
		admins = append(admins, domain.Admin{
			ID:        stringID(u.ID),
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: parseTimestamp(u.CreatedAt, now),
		})
	}
	return admins, nil
}

// CreateAdmin creates an admin account. params must already be validated.
func (c *Client) CreateAdmin(ctx context.Context, params domain.CreateAdminParams) error {
	body, contentType, err := multipartBody(map[string]string{
		"name":             params.Name,
		"email":            params.Email,
		"password":         params.Password,
		"confirm_password": params.ConfirmPassword,
		"role":             params.Role,
	})
	if err != nil {
		return domain.Internal(err, "apiclient.CreateAdmin", "failed to encode form")
	}

	_, err = c.do(ctx, request{
		op:          "apiclient.CreateAdmin",
		service:     ServiceAccounts,
		method:      http.MethodPost,
		base:        c.config.AuthURL,
		path:        "/create_account",
		body:        body,
		contentType: contentType,
	})
	return err
}

// DeleteAdmin removes the account with id. The accounts API also requires
// the account's email in the request body.
func (c *Client) DeleteAdmin(ctx context.Context, id, email string) error {
	const op = "apiclient.DeleteAdmin"

	if id == "" {
		return domain.Invalid(op, "admin id is required")
	}

	body, contentType, err := multipartBody(map[string]string{"email": email})
	if err != nil {
		return domain.Internal(err, op, "failed to encode form")
	}

	_, err = c.do(ctx, request{
		op:          op,
		service:     ServiceAccounts,
		method:      http.MethodDelete,
		base:        c.config.AuthURL,
		path:        "/delete_account/" + url.PathEscape(id),
		body:        body,
		contentType: contentType,
	})
	return err
}

func multipartBody(fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, key := range sortedKeys(fields) {
		if err := mw.WriteField(key, fields[key]); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
