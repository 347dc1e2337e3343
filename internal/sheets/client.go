// Package sheets fetches a Google Sheets tab through the gviz CSV export
// endpoint, which needs no OAuth for sheets shared by link.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrSourceUnavailable marks a fatal load failure: the sheet cannot be
// reached or its body does not parse as tabular data.
var ErrSourceUnavailable = errors.New("source unavailable")

// Client reads the CSV export of a spreadsheet tab.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

const defaultBaseURL = "https://docs.google.com"

// New creates a Client. All options are optional; the zero configuration
// talks to docs.google.com with a 30s timeout and discards logs.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	} else if httpClient.Timeout == 0 {
		httpClient.Timeout = 30 * time.Second
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// WithBaseURL overrides the Google Docs host (tests point this at a local
// server).
func WithBaseURL(u string) Option {
	return func(cfg *clientConfig) error {
		cfg.baseURL = u
		return nil
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// FetchCSV downloads the named tab of the sheet and returns its header row
// and data rows. An unreachable sheet, a non-200 response, a body that does
// not parse as CSV, or a sheet with no data rows all wrap
// ErrSourceUnavailable.
func (c *Client) FetchCSV(ctx context.Context, sheetID, tab string) (header []string, rows [][]string, err error) {
	if sheetID == "" {
		return nil, nil, fmt.Errorf("%w: sheet ID is empty", ErrSourceUnavailable)
	}

	u := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.baseURL, url.PathEscape(sheetID), url.QueryEscape(tab))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	c.logger.Debug("fetching sheet", slog.String("sheet", sheetID), slog.String("tab", tab))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: sheet %s tab %q: HTTP %d",
			ErrSourceUnavailable, sheetID, tab, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1 // gviz pads rows unevenly
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse CSV: %v", ErrSourceUnavailable, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: no data found in sheet %s tab %q",
			ErrSourceUnavailable, sheetID, tab)
	}

	c.logger.Info("sheet fetched",
		slog.String("tab", tab),
		slog.Int("rows", len(all)-1))
	return all[0], all[1:], nil
}
