package auth

import "github.com/DukeRupert/rcadmin/internal/templ/shared"

// LoginPageData contains data for the login page
type LoginPageData struct {
	Layout   shared.Layout
	Form     FormData
	Errors   map[string]string
	ReturnTo string
	Role     string // fixed role shown on the form, not editable
}

// FormData holds form field values for repopulation after validation errors.
// The password is never echoed back.
type FormData struct {
	Email string
}
