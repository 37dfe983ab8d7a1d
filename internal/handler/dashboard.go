package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/service"
	"github.com/DukeRupert/rcadmin/internal/templ/pages/dashboard"
)

// Query parameter prefixes keeping the two charts' filters apart.
const (
	candidatesPrefix   = "c_"
	transactionsPrefix = "t_"
)

// DashboardHandler renders the metrics dashboard.
//
// Routes handled:
// - GET /dashboard              -> Show
// - GET /dashboard/candidates   -> Candidates (chart partial for htmx)
// - GET /dashboard/transactions -> Transactions (chart partial for htmx)
type DashboardHandler struct {
	dashboard service.DashboardService
	renderer  TemplateRenderer
	logger    *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard service.DashboardService, renderer TemplateRenderer, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		renderer:  renderer,
		logger:    logger,
	}
}

// RegisterRoutes registers dashboard routes behind the route guard.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	mux.Handle("GET /dashboard", requireSession(http.HandlerFunc(h.Show)))
	mux.Handle("GET /dashboard/candidates", requireSession(http.HandlerFunc(h.Candidates)))
	mux.Handle("GET /dashboard/transactions", requireSession(http.HandlerFunc(h.Transactions)))
}

// Show renders the dashboard. Every block loads concurrently and fails on
// its own: a failed block shows its message while the others render.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	candFilter := domain.ParseTimeSeriesFilter(q, candidatesPrefix)
	txFilter := domain.ParseTimeSeriesFilter(q, transactionsPrefix)

	ov := h.dashboard.Overview(r.Context(), candFilter, txFilter)

	data := dashboard.PageData{
		Layout:       newLayout(w, r),
		Metrics:      ov.Metrics,
		Candidates:   candidatesChart(candFilter, ov.Candidates, ov.CandidatesErr),
		Transactions: transactionsChart(txFilter, ov.Transactions, ov.TransactionsErr),
		TimeRanges:   domain.TimeRanges,
		Frequencies:  domain.Frequencies,
	}
	if ov.MetricsErr != nil {
		data.MetricsError = domain.ErrorMessage(ov.MetricsErr)
	}
	if ov.Options != nil {
		data.Options = *ov.Options
	}

	renderComponent(w, r, h.logger, http.StatusOK, h.renderer.Page("dashboard", data))
}

// Candidates renders the candidate chart alone, for filter changes.
func (h *DashboardHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseTimeSeriesFilter(r.URL.Query(), candidatesPrefix)
	series, err := h.dashboard.CandidateSeries(r.Context(), filter)
	h.renderChart(w, r, candidatesChart(filter, series, err))
}

// Transactions renders the transaction chart alone, for filter changes.
func (h *DashboardHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseTimeSeriesFilter(r.URL.Query(), transactionsPrefix)
	series, err := h.dashboard.TransactionSeries(r.Context(), filter)
	h.renderChart(w, r, transactionsChart(filter, series, err))
}

func (h *DashboardHandler) renderChart(w http.ResponseWriter, r *http.Request, chart dashboard.ChartData) {
	data := map[string]interface{}{
		"Chart":       chart,
		"TimeRanges":  domain.TimeRanges,
		"Frequencies": domain.Frequencies,
	}
	renderComponent(w, r, h.logger, http.StatusOK, h.renderer.Partial("chart", data))
}

func candidatesChart(filter domain.TimeSeriesFilter, series *domain.TimeSeries, err error) dashboard.ChartData {
	return newChart("Candidates", candidatesPrefix, filter, series, err)
}

func transactionsChart(filter domain.TimeSeriesFilter, series *domain.TimeSeries, err error) dashboard.ChartData {
	return newChart("Transactions", transactionsPrefix, filter, series, err)
}

func newChart(title, prefix string, filter domain.TimeSeriesFilter, series *domain.TimeSeries, err error) dashboard.ChartData {
	chart := dashboard.ChartData{
		Title:         title,
		Prefix:        prefix,
		Filter:        filter,
		Series:        series,
		AwaitingDates: !filter.Ready(),
	}
	if err != nil {
		chart.Error = domain.ErrorMessage(err)
	}
	return chart
}
