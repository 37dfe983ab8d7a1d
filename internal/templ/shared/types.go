// Package shared holds the view data common to every page: the layout
// chrome and flash messages.
package shared

import "github.com/DukeRupert/rcadmin/internal/domain"

// FlashType selects the styling of a flash message.
type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashError   FlashType = "error"
	FlashInfo    FlashType = "info"
)

// Flash is a one-shot message shown at the top of a page.
type Flash struct {
	Type    FlashType
	Message string
}

// NavItem is one entry of the sidebar navigation.
type NavItem struct {
	Label  string
	Path   string
	Icon   string
	Active bool
}

// Layout is the data every layout template reads.
type Layout struct {
	Title            string
	CurrentPath      string
	User             *domain.Identity
	Nav              []NavItem
	SidebarCollapsed bool
	CSRFToken        string
	Flash            *Flash
}
