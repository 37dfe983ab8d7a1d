package domain

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Time series defaults used when the dashboard is opened without filters.
const (
	DefaultTimeRange = "3m"
	DefaultFrequency = "daily"
	CustomTimeRange  = "custom"
)

// TimeRanges are the selectable windows for the time series charts.
var TimeRanges = []Option{
	{Value: "1d", Label: "1 Day"},
	{Value: "7d", Label: "7 Days"},
	{Value: "1m", Label: "1 Month"},
	{Value: "3m", Label: "3 Months"},
	{Value: "6m", Label: "6 Months"},
	{Value: "1y", Label: "1 Year"},
	{Value: "2y", Label: "2 Years"},
	{Value: "5y", Label: "5 Years"},
	{Value: CustomTimeRange, Label: "Custom"},
}

// Frequencies are the selectable bucket sizes for the time series charts.
var Frequencies = []Option{
	{Value: "daily", Label: "Daily"},
	{Value: "weekly", Label: "Weekly"},
	{Value: "monthly", Label: "Monthly"},
	{Value: "quarterly", Label: "Quarterly"},
	{Value: "yearly", Label: "Yearly"},
}

// Option is a value/label pair for select inputs.
type Option struct {
	Value string
	Label string
}

// BidMetrics is returned by the bidding metrics API.
type BidMetrics struct {
	TotalBids          int     `json:"total_bids"`
	FulfilledBids      int     `json:"fulfilled_bids"`
	AvgFulfillTimeDays float64 `json:"avg_fulfill_time_days"`
}

// FulfillmentRate is the share of bids fulfilled, in percent.
func (b BidMetrics) FulfillmentRate() float64 {
	return percent(b.FulfilledBids, b.TotalBids)
}

// ChatDealCounts is returned by the chat/deal API.
type ChatDealCounts struct {
	TotalChatInitialize int `json:"total_chat_initialize"`
	TotalDealFinal      int `json:"total_deal_final"`
}

// ConversionRate is the share of chats that became deals, in percent.
func (c ChatDealCounts) ConversionRate() float64 {
	return percent(c.TotalDealFinal, c.TotalChatInitialize)
}

// ProfileAging is returned by the profile aging API.
type ProfileAging struct {
	AverageProfileAgingDays float64 `json:"average_profile_aging_days"`
}

// Counts is returned by the counts API.
type Counts struct {
	RecruitersCount int `json:"recruiters_count"`
	CandidatesCount int `json:"candidates_count"`
}

// PriceSummary maps a price label to its value.
type PriceSummary map[string]float64

// PriceEntry is one row of a PriceSummary in display order.
type PriceEntry struct {
	Label string
	Value float64
}

// Entries returns the summary sorted by label so pages render deterministically.
func (p PriceSummary) Entries() []PriceEntry {
	entries := make([]PriceEntry, 0, len(p))
	for k, v := range p {
		entries = append(entries, PriceEntry{Label: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })
	return entries
}

// DashboardMetrics groups the five summary metrics. They are fetched
// together and either all succeed or the whole block fails.
type DashboardMetrics struct {
	Bids         BidMetrics
	ChatDeals    ChatDealCounts
	ProfileAging ProfileAging
	Counts       Counts
	PriceSummary PriceSummary
}

// NumericRange is an inclusive min/max pair.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterOptions are the values the candidate time series can be filtered by.
type FilterOptions struct {
	Roles           []string     `json:"roles"`
	Locations       []string     `json:"locations"`
	Cities          []string     `json:"city,omitempty"`
	ExperienceRange NumericRange `json:"experience_range"`
	CTCRange        NumericRange `json:"ctc_range"`
}

// TimeSeriesFilter selects the window and slice of a time series.
// Nil pointers are unset and are not sent to the API.
type TimeSeriesFilter struct {
	TimeRange     string
	Frequency     string
	StartDate     string
	EndDate       string
	Roles         []string
	Locations     []string
	MinExperience *float64
	MaxExperience *float64
	MinCTC        *float64
	MaxCTC        *float64
	Sold          *bool
}

// DefaultTimeSeriesFilter returns the filter applied on first load.
func DefaultTimeSeriesFilter() TimeSeriesFilter {
	return TimeSeriesFilter{TimeRange: DefaultTimeRange, Frequency: DefaultFrequency}
}

// Ready reports whether the filter can be sent. A custom range needs both
// dates; until then the previous series stays on screen.
func (f TimeSeriesFilter) Ready() bool {
	if f.TimeRange == CustomTimeRange {
		return f.StartDate != "" && f.EndDate != ""
	}
	return true
}

// IsDefault reports whether no filter differs from the defaults.
func (f TimeSeriesFilter) IsDefault() bool {
	if f.TimeRange == CustomTimeRange && !f.Ready() {
		return true
	}
	return f.TimeRange == DefaultTimeRange &&
		f.Frequency == DefaultFrequency &&
		len(f.Roles) == 0 && len(f.Locations) == 0 &&
		f.MinExperience == nil && f.MaxExperience == nil &&
		f.MinCTC == nil && f.MaxCTC == nil &&
		f.Sold == nil
}

// Values encodes the filter as query parameters. Slices become repeated
// keys and unset fields are omitted.
func (f TimeSeriesFilter) Values() url.Values {
	v := url.Values{}
	if f.TimeRange != "" {
		v.Set("time_range", f.TimeRange)
	}
	if f.Frequency != "" {
		v.Set("frequency", f.Frequency)
	}
	if f.TimeRange == CustomTimeRange {
		if f.StartDate != "" {
			v.Set("start_date", f.StartDate)
		}
		if f.EndDate != "" {
			v.Set("end_date", f.EndDate)
		}
	}
	for _, r := range f.Roles {
		v.Add("roles", r)
	}
	for _, l := range f.Locations {
		v.Add("locations", l)
	}
	setFloat(v, "min_experience", f.MinExperience)
	setFloat(v, "max_experience", f.MaxExperience)
	setFloat(v, "min_ctc", f.MinCTC)
	setFloat(v, "max_ctc", f.MaxCTC)
	if f.Sold != nil {
		v.Set("sold", strconv.FormatBool(*f.Sold))
	}
	return v
}

// ParseTimeSeriesFilter reads a filter from query parameters. Keys are
// prefixed so two charts can be filtered independently on one page.
// Unparseable numbers are dropped rather than rejected.
func ParseTimeSeriesFilter(q url.Values, prefix string) TimeSeriesFilter {
	f := DefaultTimeSeriesFilter()
	if tr := strings.TrimSpace(q.Get(prefix + "time_range")); tr != "" {
		f.TimeRange = tr
	}
	if fr := strings.TrimSpace(q.Get(prefix + "frequency")); fr != "" {
		f.Frequency = fr
	}
	f.StartDate = strings.TrimSpace(q.Get(prefix + "start_date"))
	f.EndDate = strings.TrimSpace(q.Get(prefix + "end_date"))
	f.Roles = nonEmpty(q[prefix+"roles"])
	f.Locations = nonEmpty(q[prefix+"locations"])
	f.MinExperience = parseFloat(q.Get(prefix + "min_experience"))
	f.MaxExperience = parseFloat(q.Get(prefix + "max_experience"))
	f.MinCTC = parseFloat(q.Get(prefix + "min_ctc"))
	f.MaxCTC = parseFloat(q.Get(prefix + "max_ctc"))
	if s := q.Get(prefix + "sold"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			f.Sold = &b
		}
	}
	return f
}

// TimeSeriesPoint is one bucket of a time series.
type TimeSeriesPoint struct {
	Period    string  `json:"period"`
	Count     int     `json:"count"`
	Timestamp float64 `json:"timestamp"`
}

// TimeSeries is returned by the candidate and transaction time series APIs.
type TimeSeries struct {
	Filters struct {
		TimeRange string `json:"time_range"`
		Frequency string `json:"frequency,omitempty"`
		StartDate string `json:"start_date,omitempty"`
		EndDate   string `json:"end_date,omitempty"`
	} `json:"filters"`
	DataPoints      int               `json:"data_points"`
	TotalCandidates int               `json:"total_candidates"`
	Data            []TimeSeriesPoint `json:"data"`
}

// MaxCount returns the largest bucket count, used to scale bar charts.
func (t *TimeSeries) MaxCount() int {
	if t == nil {
		return 0
	}
	max := 0
	for _, p := range t.Data {
		if p.Count > max {
			max = p.Count
		}
	}
	return max
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
