package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/auth"
	"github.com/DukeRupert/rcadmin/internal/csrf"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// =============================================================================
// Navigation
// =============================================================================

// DefaultPageTitle is shown when no navigation item matches the path.
const DefaultPageTitle = "Dashboard"

// NavItems is the sidebar navigation, in display order.
var NavItems = []shared.NavItem{
	{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
	{Label: "Admin Management", Path: "/admin-management", Icon: "users"},
	{Label: "Listings", Path: "/listings", Icon: "box"},
}

// matchNav returns the index of the nav item whose path is the longest
// prefix of p, or -1.
func matchNav(p string) int {
	best, bestLen := -1, 0
	for i, item := range NavItems {
		if (p == item.Path || strings.HasPrefix(p, item.Path+"/")) && len(item.Path) > bestLen {
			best, bestLen = i, len(item.Path)
		}
	}
	return best
}

// PageTitle returns the header title for a request path.
func PageTitle(p string) string {
	if i := matchNav(p); i >= 0 {
		return NavItems[i].Label
	}
	return DefaultPageTitle
}

func navFor(p string) []shared.NavItem {
	active := matchNav(p)
	items := make([]shared.NavItem, len(NavItems))
	for i, item := range NavItems {
		item.Active = i == active
		items[i] = item
	}
	return items
}

// =============================================================================
// Layout
// =============================================================================

// newLayout builds the layout data for a page, consuming any pending flash.
func newLayout(w http.ResponseWriter, r *http.Request) shared.Layout {
	return shared.Layout{
		Title:            PageTitle(r.URL.Path),
		CurrentPath:      r.URL.Path,
		User:             auth.GetUserFromRequest(r),
		Nav:              navFor(r.URL.Path),
		SidebarCollapsed: sidebarCollapsed(r),
		CSRFToken:        csrf.FromContext(r.Context()),
		Flash:            popFlash(w, r),
	}
}

// =============================================================================
// Flash Messages
// =============================================================================

const flashCookieName = "flash"

// setFlash stores a message to show on the next page rendered for this browser.
func setFlash(w http.ResponseWriter, flashType shared.FlashType, message string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(string(flashType) + ":" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) *shared.Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	flashType, message, ok := strings.Cut(raw, ":")
	if !ok || message == "" {
		return nil
	}
	switch t := shared.FlashType(flashType); t {
	case shared.FlashSuccess, shared.FlashError, shared.FlashInfo:
		return &shared.Flash{Type: t, Message: message}
	}
	return nil
}

// =============================================================================
// Sidebar Preference
// =============================================================================

// SidebarCookieName persists the collapsed state of the sidebar.
const SidebarCookieName = "sidebar_collapsed"

func sidebarCollapsed(r *http.Request) bool {
	cookie, err := r.Cookie(SidebarCookieName)
	return err == nil && cookie.Value == "true"
}

// PreferencesHandler stores UI preferences in cookies.
//
// Routes handled:
// - POST /preferences/sidebar -> SetSidebar
type PreferencesHandler struct {
	isSecure bool
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(isSecure bool) *PreferencesHandler {
	return &PreferencesHandler{isSecure: isSecure}
}

// SetSidebar records whether the sidebar is collapsed. The form field
// "collapsed" takes "true" or "false"; when absent the state is toggled.
func (h *PreferencesHandler) SetSidebar(w http.ResponseWriter, r *http.Request) {
	collapsed := !sidebarCollapsed(r)
	switch r.FormValue("collapsed") {
	case "true":
		collapsed = true
	case "false":
		collapsed = false
	}

	value := "false"
	if collapsed {
		value = "true"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SidebarCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.isSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	redirectURL := "/dashboard"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && isSafeRedirectURL(ref.RequestURI()) {
		redirectURL = ref.RequestURI()
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// isSafeRedirectURL checks that a referer path stays on this site.
func isSafeRedirectURL(rawURL string) bool {
	return auth.IsSafeReturnPath(rawURL) || rawURL == auth.LoginPath
}

// RegisterRoutes registers preference routes behind the route guard.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	mux.Handle("POST /preferences/sidebar", requireSession(http.HandlerFunc(h.SetSidebar)))
}
