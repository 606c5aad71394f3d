package widget

// file: internal/widget/fetcher.go

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/metrics"
)

// Fetcher returns the body of a URL as text.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher implements Fetcher with net/http. Like a browser fetch, the body is
// returned whatever the status code; only transport failures are errors.
type HTTPFetcher struct {
	Client *http.Client
	logger logging.Logger
}

// MaxPageSize is the largest page served as the widget document. It leaves room
// for the JSON-RPC envelope inside a single 1 MiB stdio frame.
const MaxPageSize = 960 << 10

// NewHTTPFetcher creates a fetcher whose requests are bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
		logger: logging.GetLogger("widget_fetcher"),
	}
}

// FetchText implements Fetcher.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	start := time.Now()
	text, err := f.fetch(ctx, url)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveUpstream("widget_page", outcome, time.Since(start))
	return text, err
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create request for %s", url)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("Widget page returned non-success status.", "url", url, "status", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageSize+1))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read body of %s", url)
	}
	if len(body) > MaxPageSize {
		return "", errors.Newf("page at %s exceeds %d bytes", url, MaxPageSize)
	}
	return string(body), nil
}
