package handler

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/pagination"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/admins"
	authpages "github.com/DukeRupert/rcadmin/internal/templ/pages/auth"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/dashboard"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/listings"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
	"github.com/DukeRupert/rcadmin/web"
)

func newWebRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: newTestLogger()})
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, page bool, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	c := r.Partial(name, data)
	if page {
		c = r.Page(name, data)
	}
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func appLayout(path string) shared.Layout {
	return shared.Layout{
		Title:       PageTitle(path),
		CurrentPath: path,
		User:        testIdentity(),
		Nav:         navFor(path),
		CSRFToken:   "csrf-tok",
	}
}

func TestRenderer_LoadsEmbeddedTemplates(t *testing.T) {
	r := newWebRenderer(t)

	names := r.ListTemplates()
	sort.Strings(names)
	assert.Equal(t, []string{
		"admin_management",
		"auth/login",
		"dashboard",
		"listings/index",
		"listings/show",
		"partial/admin_table",
		"partial/chart",
		"partial/toast",
	}, names)
}

func TestRenderer_LoginPage(t *testing.T) {
	r := newWebRenderer(t)

	html := render(t, r, true, "auth/login", authpages.LoginPageData{
		Layout:   shared.Layout{Title: "Sign in", CSRFToken: "csrf-tok", Flash: &shared.Flash{Type: shared.FlashError, Message: "Invalid email or password"}},
		Form:     authpages.FormData{Email: "admin@example.com"},
		Errors:   map[string]string{"password": "Password is required"},
		ReturnTo: "/listings?page=2",
		Role:     domain.RoleSuperAdmin,
	})

	assert.Contains(t, html, "<title>Sign in · Admin</title>")
	assert.Contains(t, html, `value="admin@example.com"`)
	assert.Contains(t, html, "Password is required")
	assert.Contains(t, html, "Invalid email or password")
	assert.Contains(t, html, `name="csrf_token" value="csrf-tok"`)
	assert.Contains(t, html, `name="return_to" value="/listings?page=2"`)
	assert.NotContains(t, html, `name="password" value=`)
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	r := newWebRenderer(t)

	html := render(t, r, true, "auth/login", authpages.LoginPageData{
		Form: authpages.FormData{Email: `"><script>alert(1)</script>`},
	})

	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRenderer_DashboardPage(t *testing.T) {
	r := newWebRenderer(t)
	sold := true

	html := render(t, r, true, "dashboard", dashboard.PageData{
		Layout: appLayout("/dashboard"),
		Metrics: &domain.DashboardMetrics{
			Bids:         domain.BidMetrics{TotalBids: 200, FulfilledBids: 50, AvgFulfillTimeDays: 2.25},
			ChatDeals:    domain.ChatDealCounts{TotalChatInitialize: 10, TotalDealFinal: 3},
			Counts:       domain.Counts{RecruitersCount: 1200, CandidatesCount: 5400},
			PriceSummary: domain.PriceSummary{"average": 1500},
		},
		Options: domain.FilterOptions{Roles: []string{"Engineer", "Designer"}, Locations: []string{"Pune"}},
		Candidates: dashboard.ChartData{
			Title:  "Candidates",
			Prefix: "c_",
			Filter: domain.TimeSeriesFilter{TimeRange: "1y", Frequency: "monthly", Roles: []string{"Engineer"}},
			Series: &domain.TimeSeries{TotalCandidates: 30, Data: []domain.TimeSeriesPoint{
				{Period: "2026-01", Count: 10},
				{Period: "2026-02", Count: 20},
			}},
		},
		Transactions: dashboard.ChartData{
			Title:  "Transactions",
			Prefix: "t_",
			Filter: domain.TimeSeriesFilter{TimeRange: domain.CustomTimeRange, Frequency: "daily", Sold: &sold},
			Error:  "Failed to load transaction data",
		},
		TimeRanges:  domain.TimeRanges,
		Frequencies: domain.Frequencies,
	})

	assert.Contains(t, html, "1,200")
	assert.Contains(t, html, "25%")
	assert.Contains(t, html, `id="chart-c_"`)
	assert.Contains(t, html, `height: 50%`)
	assert.Contains(t, html, `height: 100%`)
	assert.Contains(t, html, `<option value="Engineer" selected>`)
	assert.Contains(t, html, `<option value="Designer" >`)
	assert.Contains(t, html, `<option value="true" selected>Sold</option>`)
	assert.Contains(t, html, "Failed to load transaction data")
	assert.Contains(t, html, `aria-current="page"`)
}

func TestRenderer_DashboardMetricsError(t *testing.T) {
	r := newWebRenderer(t)

	html := render(t, r, true, "dashboard", dashboard.PageData{
		Layout:       appLayout("/dashboard"),
		MetricsError: "Failed to fetch dashboard metrics. Please try again later.",
		Candidates:   dashboard.ChartData{Prefix: "c_", Filter: domain.DefaultTimeSeriesFilter()},
		Transactions: dashboard.ChartData{Prefix: "t_", Filter: domain.DefaultTimeSeriesFilter()},
		TimeRanges:   domain.TimeRanges,
		Frequencies:  domain.Frequencies,
	})

	assert.Contains(t, html, "Failed to fetch dashboard metrics. Please try again later.")
	assert.NotContains(t, html, "Recruiters")
}

func TestRenderer_ChartPartial(t *testing.T) {
	r := newWebRenderer(t)

	html := render(t, r, false, "chart", map[string]interface{}{
		"Chart": dashboard.ChartData{
			Prefix:        "t_",
			Filter:        domain.TimeSeriesFilter{TimeRange: domain.CustomTimeRange, StartDate: "2026-01-01"},
			AwaitingDates: true,
		},
		"TimeRanges":  domain.TimeRanges,
		"Frequencies": domain.Frequencies,
	})

	assert.Contains(t, html, `id="chart-t_"`)
	assert.Contains(t, html, "Pick a start and end date")
	assert.NotContains(t, html, "<html")
}

func TestRenderer_AdminPage(t *testing.T) {
	r := newWebRenderer(t)

	html := render(t, r, true, "admin_management", admins.PageData{
		Layout: appLayout("/admin-management"),
		Admins: []domain.Admin{
			{ID: "7", Name: "Ravi", Email: "ravi@example.com", Role: "admin", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		},
		Form:     admins.FormData{Name: "Meera", Role: "admin"},
		Errors:   map[string]string{"email": "Email is required", "form": "Email already registered"},
		Roles:    domain.AdminRoles,
		ShowForm: true,
	})

	assert.Contains(t, html, `hx-post="/admin-management/7/delete"`)
	assert.Contains(t, html, "ravi@example.com")
	assert.Contains(t, html, "Email is required")
	assert.Contains(t, html, "Email already registered")
	assert.Contains(t, html, `value="Meera"`)
	assert.Contains(t, html, `<option value="admin" selected>`)
	assert.Contains(t, html, `id="toast-container"`)
}

func TestRenderer_AdminTableAndToastPartials(t *testing.T) {
	r := newWebRenderer(t)

	table := render(t, r, false, "admin_table", admins.TableData{CSRFToken: "csrf-tok"})
	assert.Contains(t, table, `id="admin-table"`)
	assert.Contains(t, table, "No admins found.")

	toast := render(t, r, false, "toast", ToastData{Type: "success", Message: "Admin deleted."}.withDefaults())
	assert.Contains(t, toast, `hx-swap-oob="beforeend:#toast-container"`)
	assert.Contains(t, toast, `data-dismiss="5"`)
	assert.Contains(t, toast, "Admin deleted.")
}

func TestRenderer_ListingsPages(t *testing.T) {
	r := newWebRenderer(t)

	products := make([]domain.Product, 0, 10)
	for i := 0; i < 10; i++ {
		products = append(products, domain.Product{ID: "p", Name: "Steel pipe", Category: "Hardware", Price: 1250, Currency: "INR"})
	}
	index := render(t, r, true, "listings/index", listings.IndexPageData{
		Layout:     appLayout("/listings"),
		Products:   products,
		Categories: []domain.Category{{ID: "c1", Name: "Hardware"}},
		Promotions: []domain.Promotion{{ID: "pr1", Title: "Monsoon sale", DiscountType: "percentage", DiscountRate: 15, IsActive: true}},
		Pagination: pagination.New(25, 2, 10),
		Category:   "Hardware",
	})

	assert.Contains(t, index, `href="/listings/p"`)
	assert.Contains(t, index, "Monsoon sale")
	assert.Contains(t, index, "15% off")
	assert.Contains(t, index, "Page 2 of 3")
	assert.Contains(t, index, `href="/listings?category=Hardware&amp;page=3"`)
	assert.Contains(t, index, `href="/listings?category=Hardware"`)

	show := render(t, r, true, "listings/show", listings.ShowPageData{
		Layout: appLayout("/listings/p"),
		Product: &domain.Product{
			ID: "p", Name: "Steel pipe", Description: "Galvanised", Quantity: 40,
			Supplier:       domain.ProductSupplier{Name: "Acme", City: "Pune"},
			Specifications: domain.ProductSpecifications{Weight: "12kg"},
		},
	})

	assert.Contains(t, show, "Galvanised")
	assert.Contains(t, show, "Acme")
	assert.Contains(t, show, "12kg")

	missing := render(t, r, true, "listings/show", listings.ShowPageData{
		Layout: appLayout("/listings/p"),
		Error:  `product with ID "p" not found`,
	})
	assert.Contains(t, missing, "not found")
}

// =============================================================================
// Template tree layout
// =============================================================================

func minimalTree() fstest.MapFS {
	return fstest.MapFS{
		"layouts/auth.html":        {Data: []byte(`{{define "auth"}}AUTH[{{template "content" .}}]{{end}}`)},
		"layouts/app.html":         {Data: []byte(`{{define "app"}}APP[{{template "content" .}}]{{end}}`)},
		"components/greet.html":    {Data: []byte(`{{define "greet"}}hi {{.}}{{end}}`)},
		"partials/note.html":       {Data: []byte(`{{define "note"}}<p>{{template "greet" .}}</p>{{end}}`)},
		"pages/auth/login.html":    {Data: []byte(`{{define "content"}}login{{end}}`)},
		"pages/reports/daily.html": {Data: []byte(`{{define "content"}}{{template "note" .}}{{end}}`)},
	}
}

func TestRenderer_LayoutSelection(t *testing.T) {
	r, err := NewRenderer(RendererConfig{FS: minimalTree(), Logger: newTestLogger()})
	require.NoError(t, err)

	assert.Equal(t, "AUTH[login]", render(t, r, true, "auth/login", nil))
	assert.Equal(t, "APP[<p>hi bob</p>]", render(t, r, true, "reports/daily", "bob"))
	assert.Equal(t, "<p>hi bob</p>", render(t, r, false, "note", "bob"))
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer(RendererConfig{FS: minimalTree(), Logger: newTestLogger()})
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Page("missing", nil).Render(context.Background(), &buf))
	assert.Error(t, r.Partial("missing", nil).Render(context.Background(), &buf))
}

func TestRenderer_ParseErrors(t *testing.T) {
	tree := minimalTree()
	tree["pages/broken.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Oops{{end}}`)}

	_, err := NewRenderer(RendererConfig{FS: tree, Logger: newTestLogger()})
	assert.Error(t, err)

	_, err = NewRenderer(RendererConfig{Logger: newTestLogger()})
	assert.Error(t, err)
}
