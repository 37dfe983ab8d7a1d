package apiclient

import (
	"context"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// BidMetrics fetches bid totals from the bidding metrics service.
func (c *Client) BidMetrics(ctx context.Context) (*domain.BidMetrics, error) {
	var out domain.BidMetrics
	if err := c.getJSON(ctx, "apiclient.BidMetrics", ServiceBids, c.config.BidsURL, "/bids/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatDealCounts fetches chat and deal totals.
func (c *Client) ChatDealCounts(ctx context.Context) (*domain.ChatDealCounts, error) {
	var out domain.ChatDealCounts
	if err := c.getJSON(ctx, "apiclient.ChatDealCounts", ServiceChatDeals, c.config.ChatDealURL, "/chat-deal-counts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileAging fetches the average candidate profile age.
func (c *Client) ProfileAging(ctx context.Context) (*domain.ProfileAging, error) {
	var out domain.ProfileAging
	if err := c.getJSON(ctx, "apiclient.ProfileAging", ServiceProfileAging, c.config.ProfileAgingURL, "/average_profile_aging", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Counts fetches recruiter and candidate totals.
func (c *Client) Counts(ctx context.Context) (*domain.Counts, error) {
	var out domain.Counts
	if err := c.getJSON(ctx, "apiclient.Counts", ServiceCounts, c.config.CountsURL, "/counts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PriceSummary fetches the five point price summary.
func (c *Client) PriceSummary(ctx context.Context) (domain.PriceSummary, error) {
	out := domain.PriceSummary{}
	if err := c.getJSON(ctx, "apiclient.PriceSummary", ServicePriceSummary, c.config.PriceSummaryURL, "/price-summary", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CandidateFilterOptions fetches the values the candidate series can be
// filtered by.
func (c *Client) CandidateFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	var out domain.FilterOptions
	if err := c.getJSON(ctx, "apiclient.CandidateFilterOptions", ServiceCandidates, c.config.CandidatesURL, "/candidates/filter-options", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CandidateTimeSeries fetches candidate registrations bucketed over time.
func (c *Client) CandidateTimeSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	var out domain.TimeSeries
	if err := c.getJSON(ctx, "apiclient.CandidateTimeSeries", ServiceCandidates, c.config.CandidatesURL, "/candidates/time-series", filter.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionTimeSeries fetches transactions bucketed over time.
func (c *Client) TransactionTimeSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	var out domain.TimeSeries
	if err := c.getJSON(ctx, "apiclient.TransactionTimeSeries", ServiceTransactions, c.config.TransactionsURL, "/transactions/time-series", filter.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
