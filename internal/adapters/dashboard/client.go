// Package dashboard implements the authenticated HTTP client for the
// dashboard's internal metrics APIs.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/dashport/internal/config"
	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/internal/domain/normalize"
	"github.com/okian/dashport/pkg/logger"
	"github.com/okian/dashport/pkg/metrics"
)

// Defaults applied when no options override them.
const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// retryableStatus lists responses retried with backoff. 401 is never in
// this set: expired credentials do not heal by retrying.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches JSON payloads from the dashboard's internal APIs using
// pre-obtained session cookies.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cookies    map[string]string
	endpoints  []config.Endpoint
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// New constructs a Client for the given origin and session cookies.
func New(baseURL string, cookies map[string]string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookies:    cookies,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		log:        logger.Get(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// dateParam formats a timestamp the way the API expects its date query
// values: URL-encoded compact JSON, {"year":2025,"month":10,"day":22}.
func dateParam(t time.Time) string {
	t = t.UTC()
	obj := fmt.Sprintf(`{"year":%d,"month":%d,"day":%d}`, t.Year(), int(t.Month()), t.Day())
	return url.QueryEscape(obj)
}

// buildURL assembles the full endpoint URL with start/end date parameters.
func (c *Client) buildURL(path string, start, end time.Time) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s%s?startDate=%s&endDate=%s", c.baseURL, path, dateParam(start), dateParam(end))
}

// FetchEndpoint GETs one endpoint for the given date range and decodes
// the JSON body. Transient failures (429/5xx, network errors) are retried
// with exponential backoff up to the configured budget; a 401 returns
// ErrAuthExpired immediately.
func (c *Client) FetchEndpoint(ctx context.Context, path string, start, end time.Time) (any, error) {
	fullURL := c.buildURL(path, start, end)
	c.log.Debug(ctx, "fetching endpoint", logger.String("url", fullURL))

	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		payload, retryable, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return payload, nil
		}
		if !retryable || attempt >= c.maxRetries {
			return nil, err
		}

		metrics.RecordFetchRetry()
		c.log.Warn(ctx, "transient fetch failure; retrying",
			logger.String("path", path),
			logger.Int("attempt", attempt+1),
			logger.Int("max_retries", c.maxRetries),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// doRequest performs a single GET. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, fullURL string) (any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failure: retryable.
		return nil, true, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.RecordAuthFailure()
		return nil, false, ErrAuthExpired
	case retryableStatus[resp.StatusCode]:
		return nil, true, fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: decode body: %v", ErrFetch, err)
	}
	return payload, false, nil
}

// Records fetches every configured endpoint for the date range and
// normalizes the payloads into canonical records. A failing endpoint is
// logged and skipped so its siblings still contribute; only an expired
// session aborts the fan-out.
func (c *Client) Records(ctx context.Context, start, end time.Time) ([]model.Record, error) {
	var records []model.Record

	for _, ep := range c.endpoints {
		c.log.Info(ctx, "scraping endpoint",
			logger.String("name", ep.Name),
			logger.String("path", ep.Path),
		)
		metrics.RecordFetch(ep.Name)

		payload, err := c.FetchEndpoint(ctx, ep.Path, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			if errors.Is(err, ErrAuthExpired) {
				return records, err
			}
			metrics.RecordFetchFailure(ep.Name)
			c.log.Error(ctx, "endpoint fetch failed; continuing with remaining endpoints",
				logger.String("name", ep.Name),
				logger.Error(err),
			)
			continue
		}

		batch := c.normalizePayload(ep, payload)
		metrics.RecordNormalized(recordKind(ep.Name), len(batch))
		c.log.Info(ctx, "fetched records",
			logger.String("name", ep.Name),
			logger.Int("count", len(batch)),
		)
		records = append(records, batch...)
	}

	return records, nil
}

// normalizePayload dispatches a payload to the normalizer matching the
// endpoint's shape.
func (c *Client) normalizePayload(ep config.Endpoint, payload any) []model.Record {
	switch ep.Name {
	case config.EndpointUserStats:
		return normalize.UserStats(payload)
	case config.EndpointTenantStats:
		return []model.Record{normalize.TenantSummary(payload)}
	case config.EndpointTenantMAU:
		return []model.Record{normalize.TenantMAU(payload)}
	default:
		return normalize.Generic(ep.Name, ep.Path, payload)
	}
}

func recordKind(endpointName string) string {
	switch endpointName {
	case config.EndpointUserStats:
		return model.KindUserStats.String()
	case config.EndpointTenantStats:
		return model.KindTenantSummary.String()
	case config.EndpointTenantMAU:
		return model.KindTenantMetric.String()
	default:
		return model.KindGeneric.String()
	}
}
