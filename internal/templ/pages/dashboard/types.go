package dashboard

import (
	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/templ/shared"
)

// PageData contains data for the dashboard page.
type PageData struct {
	Layout       shared.Layout
	Metrics      *domain.DashboardMetrics
	MetricsError string
	Options      domain.FilterOptions
	Candidates   ChartData
	Transactions ChartData
	TimeRanges   []domain.Option
	Frequencies  []domain.Option
}

// ChartData is one time series chart with its filter form.
type ChartData struct {
	Title  string
	Prefix string // query parameter prefix for this chart's filters
	Filter domain.TimeSeriesFilter
	Series *domain.TimeSeries
	Error  string

	// AwaitingDates is set when a custom range lacks a start or end date,
	// so no request was made.
	AwaitingDates bool
}
