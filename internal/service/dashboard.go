package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// User-facing messages for each dashboard block.
const (
	MsgMetricsFailed      = "Failed to fetch dashboard metrics. Please try again later."
	MsgCandidatesFailed   = "Failed to fetch time series data. Please try again later."
	MsgTransactionsFailed = "Failed to fetch transaction time series data. Please try again later."
)

// DashboardService assembles the dashboard from the metrics services.
type DashboardService interface {
	// Metrics fetches the five summary metrics concurrently. If any one
	// fails the whole block fails with MsgMetricsFailed.
	Metrics(ctx context.Context) (*domain.DashboardMetrics, error)

	// FilterOptions fetches the candidate filter values. Failures are
	// logged and yield empty options.
	FilterOptions(ctx context.Context) *domain.FilterOptions

	// CandidateSeries and TransactionSeries return nil, nil when the filter
	// is not ready yet (a custom range missing a date).
	CandidateSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error)
	TransactionSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error)

	// Overview loads every block of the dashboard concurrently. Each block
	// fails independently.
	Overview(ctx context.Context, candidates, transactions domain.TimeSeriesFilter) *Overview
}

// Overview is everything the dashboard page shows.
type Overview struct {
	Metrics    *domain.DashboardMetrics
	MetricsErr error

	Options *domain.FilterOptions

	Candidates    *domain.TimeSeries
	CandidatesErr error

	Transactions    *domain.TimeSeries
	TransactionsErr error
}

type dashboardService struct {
	api    MetricsAPI
	logger *slog.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(api MetricsAPI, logger *slog.Logger) DashboardService {
	return &dashboardService{api: api, logger: logger}
}

func (s *dashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	const op = "dashboard.metrics"

	var m domain.DashboardMetrics
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bids, err := s.api.BidMetrics(gctx)
		if err == nil {
			m.Bids = *bids
		}
		return err
	})
	g.Go(func() error {
		deals, err := s.api.ChatDealCounts(gctx)
		if err == nil {
			m.ChatDeals = *deals
		}
		return err
	})
	g.Go(func() error {
		aging, err := s.api.ProfileAging(gctx)
		if err == nil {
			m.ProfileAging = *aging
		}
		return err
	})
	g.Go(func() error {
		counts, err := s.api.Counts(gctx)
		if err == nil {
			m.Counts = *counts
		}
		return err
	})
	g.Go(func() error {
		summary, err := s.api.PriceSummary(gctx)
		if err == nil {
			m.PriceSummary = summary
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch dashboard metrics", "error", err)
		return nil, domain.Unavailable(err, op, MsgMetricsFailed)
	}
	return &m, nil
}

func (s *dashboardService) FilterOptions(ctx context.Context) *domain.FilterOptions {
	opts, err := s.api.CandidateFilterOptions(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch filter options", "error", err)
		return &domain.FilterOptions{}
	}
	return opts
}

func (s *dashboardService) CandidateSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if !filter.Ready() {
		return nil, nil
	}
	series, err := s.api.CandidateTimeSeries(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch candidate time series", "error", err)
		return nil, domain.Unavailable(err, "dashboard.candidates", MsgCandidatesFailed)
	}
	return series, nil
}

func (s *dashboardService) TransactionSeries(ctx context.Context, filter domain.TimeSeriesFilter) (*domain.TimeSeries, error) {
	if !filter.Ready() {
		return nil, nil
	}
	series, err := s.api.TransactionTimeSeries(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch transaction time series", "error", err)
		return nil, domain.Unavailable(err, "dashboard.transactions", MsgTransactionsFailed)
	}
	return series, nil
}

func (s *dashboardService) Overview(ctx context.Context, candidates, transactions domain.TimeSeriesFilter) *Overview {
	var ov Overview

	// A plain group: one failed block must not cancel the others, so every
	// goroutine records its error on the Overview and returns nil.
	var g errgroup.Group
	g.Go(func() error {
		ov.Metrics, ov.MetricsErr = s.Metrics(ctx)
		return nil
	})
	g.Go(func() error {
		ov.Options = s.FilterOptions(ctx)
		return nil
	})
	g.Go(func() error {
		ov.Candidates, ov.CandidatesErr = s.CandidateSeries(ctx, candidates)
		return nil
	})
	g.Go(func() error {
		ov.Transactions, ov.TransactionsErr = s.TransactionSeries(ctx, transactions)
		return nil
	})
	_ = g.Wait()

	return &ov
}
