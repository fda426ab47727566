// Package socrata fetches SFPD incident reports from the San Francisco open
// data portal.
package socrata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
)

// Client queries a SODA resource endpoint for incident reports.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Socrata client. An empty app token is allowed; SODA
// then applies its anonymous throttling.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchIncidents issues a single GET for incidents dated within p. Network
// failures and non-2xx statuses wrap domain.ErrTransport; a body that is not
// a JSON array wraps domain.ErrResponseNotList. There is no retry.
func (c *Client) FetchIncidents(ctx context.Context, p domain.QueryParams) ([]domain.RawIncident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	raws, skipped, err := domain.DecodeRecords(body)
	if err != nil {
		c.logger.Debug("received non-array response from socrata", "bytes", len(body))
		return nil, err
	}

	c.metrics.RecordsReceived.Add(float64(len(raws) + skipped))
	if skipped > 0 {
		c.metrics.RecordsDropped.Add(float64(skipped))
		c.logger.Warn("skipped undecodable incident records", "skipped", skipped)
	}
	c.logger.Debug("fetched incidents", "records", len(raws), "limit", p.Limit)
	return raws, nil
}

func (c *Client) requestURL(p domain.QueryParams) string {
	params := url.Values{
		"$limit": {strconv.Itoa(p.Limit)},
		"$where": {p.WhereClause()},
	}
	if c.token != "" {
		params.Set("$$app_token", c.token)
	}
	return c.baseURL + "?" + params.Encode()
}
