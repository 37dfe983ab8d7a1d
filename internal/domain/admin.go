package domain

import (
	"regexp"
	"strings"
	"time"
)

// MinAdminPasswordLength is the shortest password accepted for a new admin.
const MinAdminPasswordLength = 6

// AdminRoles lists the roles an admin account can be created with.
var AdminRoles = []string{"admin", RoleSuperAdmin}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Admin is an administrator account as listed by the accounts API.
type Admin struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

// CreateAdminParams contains the fields submitted to create an admin account.
type CreateAdminParams struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// Normalize trims whitespace from the free-text fields.
func (p *CreateAdminParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Role = strings.TrimSpace(p.Role)
}

// Validate checks the params and returns a *ValidationError keyed by form
// field name, or nil when the params are acceptable.
func (p CreateAdminParams) Validate() error {
	ve := &ValidationError{Op: "admin.create", Fields: map[string]string{}}

	if p.Name == "" {
		ve.Add("name", "Name is required")
	}

	if p.Email == "" {
		ve.Add("email", "Email is required")
	} else if !IsValidEmail(p.Email) {
		ve.Add("email", "Email is invalid")
	}

	if p.Role == "" {
		ve.Add("role", "Role is required")
	}

	if len(p.Password) < MinAdminPasswordLength {
		ve.Add("password", "Password must be at least 6 characters")
	}

	if p.Password != p.ConfirmPassword {
		ve.Add("confirm_password", "Passwords do not match")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// IsValidEmail performs basic email format validation.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
