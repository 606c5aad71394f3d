// Package deezer is a client for the Deezer track search API together with the
// normalizer that maps its records onto a stable Track shape.
package deezer

// file: internal/deezer/client.go

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/metrics"
)

// Defaults applied by NewClient when zero values are passed.
const (
	DefaultAPIURL  = "https://api.deezer.com"
	DefaultLimit   = 100
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of an upstream response is read.
	maxBodySize = 8 << 20
)

// Client performs track searches against the upstream API.
type Client struct {
	HTTPClient *http.Client
	APIURL     string
	Limit      int
	logger     logging.Logger
}

// NewClient creates a search client. Zero arguments fall back to the defaults.
func NewClient(apiURL string, limit int, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		APIURL:     strings.TrimRight(apiURL, "/"),
		Limit:      limit,
		logger:     logging.GetLogger("deezer_client"),
	}
}

// SearchURL builds the request URL. The query is always present, even when empty,
// and spaces are encoded as %20.
func (c *Client) SearchURL(query string) string {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return c.APIURL + "/search?q=" + q + "&limit=" + strconv.Itoa(c.Limit)
}

// SearchRaw performs exactly one upstream request and returns the response body.
// Non-2xx statuses are returned as errors of the form "HTTP <status>".
func (c *Client) SearchRaw(ctx context.Context, query string) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, c.SearchURL(query))
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveUpstream("deezer_search", outcome, time.Since(start))
	return body, err
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("Upstream search request failed.", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		c.logger.Warn("Upstream search returned non-success status.", "status", resp.StatusCode)
		return nil, errors.Newf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read search response body")
	}
	return body, nil
}

// Search runs one upstream search and normalizes the result.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	body, err := c.SearchRaw(ctx, query)
	if err != nil {
		return SearchResult{Results: []Track{}}, err
	}
	res, err := Normalize(body)
	if err != nil {
		return SearchResult{Results: []Track{}}, err
	}
	c.logger.Debug("Upstream search completed.", "query", query, "results", len(res.Results), "total", res.Total)
	return res, nil
}
