// Package arcgis issues feature-query requests against esri-dialect
// geospatial endpoints with bounded timeouts and linear-backoff retry.
package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gtsearch/parcel-risk/internal/observability"
)

var (
	// ErrUpstreamStatus marks a non-2xx upstream response.
	ErrUpstreamStatus = errors.New("upstream status")
	// ErrFeatureService marks an embedded error payload inside a 200
	// response. Retrying a malformed query is pointless, so these are
	// surfaced immediately.
	ErrFeatureService = errors.New("feature service error")
)

type Options struct {
	Timeout time.Duration
	Retries int
	Label   string
}

type Client struct {
	logger *slog.Logger
	http   *http.Client

	sleep func(time.Duration) // for tests
}

func New(logger *slog.Logger, httpClient *http.Client) *Client {
	return &Client{
		logger: logger,
		http:   httpClient,
		sleep:  time.Sleep,
	}
}

// Query performs a single GET with the given params, retrying transport
// failures and non-2xx responses up to opts.Retries additional times with
// linear backoff (attempt * 1s). A 200 response carrying an embedded error
// object fails immediately with ErrFeatureService. On exhaustion the last
// error is returned; the caller owns turning it into a found:false result.
func (c *Client) Query(ctx context.Context, rawURL string, params url.Values, opts Options) (*FeatureCollection, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Label == "" {
		opts.Label = "arcgis"
	}

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			c.sleep(time.Duration(attempt) * time.Second)
		}

		fc, err := c.do(ctx, rawURL, params, opts)
		if err == nil {
			return fc, nil
		}
		if errors.Is(err, ErrFeatureService) || ctx.Err() != nil {
			observability.IncUpstreamError(opts.Label)
			return nil, err
		}

		lastErr = err
		c.logger.Warn("query attempt failed",
			"label", opts.Label,
			"attempt", attempt+1,
			"of", opts.Retries+1,
			"err", err)
	}

	observability.IncUpstreamError(opts.Label)
	return nil, fmt.Errorf("%s: all %d attempts failed: %w", opts.Label, opts.Retries+1, lastErr)
}

func (c *Client) do(ctx context.Context, rawURL string, params url.Values, opts Options) (*FeatureCollection, error) {
	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "parcel-risk/1.0")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	observability.ObserveUpstreamLatency(opts.Label, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("%w %d: %s", ErrUpstreamStatus, resp.StatusCode, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if fc.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrFeatureService, fc.Error.String())
	}
	return &fc, nil
}
