// Package apiclient talks to the marketplace's remote HTTP APIs.
//
// Every service may live on its own host. All calls go through a single
// http.Client whose transport attaches the signed-in user's bearer token
// from the request context.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/metrics"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error body is surfaced as a message.
const maxErrorBody = 512

// Service names used in logs and upstream metrics.
const (
	ServiceAuth         = "auth"
	ServiceAccounts     = "accounts"
	ServiceBids         = "bids"
	ServiceChatDeals    = "chat_deals"
	ServiceProfileAging = "profile_aging"
	ServiceCounts       = "counts"
	ServicePriceSummary = "price_summary"
	ServiceCandidates   = "candidates"
	ServiceTransactions = "transactions"
	ServiceCatalog      = "catalog"
)

// Config holds the remote endpoints. Any empty service URL falls back to
// BaseURL.
type Config struct {
	BaseURL         string
	AuthURL         string
	BidsURL         string
	ChatDealURL     string
	ProfileAgingURL string
	CountsURL       string
	PriceSummaryURL string
	CandidatesURL   string
	TransactionsURL string

	Timeout time.Duration

	// Transport is the base transport under the bearer interceptor.
	// http.DefaultTransport if nil.
	Transport http.RoundTripper

	// Tokens supplies the bearer token per request.
	Tokens TokenSource
}

// Client calls the remote APIs on behalf of the signed-in user.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a client. BaseURL is required.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("apiclient: base URL is required")
	}

	// Set defaults
	for _, u := range []*string{
		&config.AuthURL,
		&config.BidsURL,
		&config.ChatDealURL,
		&config.ProfileAgingURL,
		&config.CountsURL,
		&config.PriceSummaryURL,
		&config.CandidatesURL,
		&config.TransactionsURL,
	} {
		if *u == "" {
			*u = config.BaseURL
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		http: &http.Client{
			Timeout:   config.Timeout,
			Transport: &BearerTransport{Base: config.Transport, Source: config.Tokens},
		},
		logger: logger,
	}, nil
}

// Error is a non-2xx response from a remote API.
type Error struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s api: %d %s", e.Service, e.StatusCode, e.Message)
}

// Code maps the HTTP status to a domain error code.
func (e *Error) Code() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case e.StatusCode == http.StatusForbidden:
		return domain.EFORBIDDEN
	case e.StatusCode == http.StatusNotFound:
		return domain.ENOTFOUND
	case e.StatusCode == http.StatusConflict:
		return domain.ECONFLICT
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ERATELIMIT
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return domain.EINVALID
	default:
		return domain.EUNAVAILABLE
	}
}

// request describes one remote call.
type request struct {
	op          string
	service     string
	method      string
	base        string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
}

// response is a fully read remote response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do executes req and returns the body of a 2xx response. Non-2xx responses
// become a *domain.Error wrapping an *Error; transport failures become
// EUNAVAILABLE.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status > 299 {
		apiErr := &Error{
			Service:    req.service,
			StatusCode: resp.status,
			Message:    errorMessage(resp.body, resp.status),
		}
		return nil, domain.Wrap(apiErr, apiErr.Code(), req.op, apiErr.Message)
	}
	return resp, nil
}

// roundTrip sends req and reads the whole body regardless of status.
func (c *Client) roundTrip(ctx context.Context, req request) (*response, error) {
	u, err := joinURL(req.base, req.path, req.query)
	if err != nil {
		return nil, domain.Internal(err, req.op, "invalid API URL")
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return nil, domain.Internal(err, req.op, "failed to build API request")
	}
	accept := req.accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveUpstream(req.service, 0, time.Since(start))
		c.logger.Warn("api request failed",
			"service", req.service,
			"method", req.method,
			"path", req.path,
			"error", err,
		)
		return nil, domain.Unavailable(err, req.op, "The service is currently unavailable. Please try again later.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(req.service, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, domain.Unavailable(err, req.op, "Failed to read the service response.")
	}

	c.logger.Debug("api request",
		"service", req.service,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, op, service, base, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, request{
		op:      op,
		service: service,
		method:  http.MethodGet,
		base:    base,
		path:    path,
		query:   query,
	})
	if err != nil {
		return err
	}
	return decode(op, resp.body, out)
}

func decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return domain.Unavailable(err, op, "The service returned an unexpected response.")
	}
	return nil
}

// joinURL appends path to base, keeping any path prefix base already has.
func joinURL(base, path string, query url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// errorMessage extracts a human readable message from an error body:
// the JSON message or error field, else the raw text, else the status text.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, v := range []any{payload.Message, payload.Error} {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return text
	}
	if st := http.StatusText(status); st != "" {
		return st
	}
	return fmt.Sprintf("status %d", status)
}
