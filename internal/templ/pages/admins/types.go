package admins

import (
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// PageData contains data for the admin management page.
type PageData struct {
	Layout   shared.Layout
	Admins   []domain.Admin
	Error    string // list failure; the table is replaced by this message
	Form     FormData
	Errors   map[string]string
	Roles    []string
	ShowForm bool // reopen the create form after a failed submission
}

// FormData holds the create form values for repopulation. Passwords are
// never echoed back.
type FormData struct {
	Name  string
	Email string
	Role  string
}

// TableData is the admin table partial, re-rendered after a delete.
type TableData struct {
	Admins    []domain.Admin
	CSRFToken string
}
