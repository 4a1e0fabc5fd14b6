// Package portal talks to the browser-proxy sidecar that holds the
// authenticated portal session. The sidecar drives the actual browser; this
// client only ever sees JSON and binary bodies.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"agrolog/groundstation/internal/metrics"
	"agrolog/groundstation/internal/models/entities"
)

// ErrNotFound is returned when the portal has no such record.
var ErrNotFound = errors.New("record not found")

// SessionStatus reports whether the sidecar currently holds an
// authenticated portal session.
type SessionStatus struct {
	Authenticated bool    `json:"authenticated"`
	Username      *string `json:"username,omitempty"`
}

// RecordList is one page of the portal's record list.
type RecordList struct {
	Items   []entities.RecordSummary `json:"items"`
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
}

// Client is the HTTP client for the sidecar. The sidecar exposes a single
// logical browser session that cannot run two navigations at once, so every
// call is serialized through a mutex and paced by a rate limiter. Decoding
// parallelism lives downstream of this client.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	mu      sync.Mutex
	limiter *rate.Limiter
	metrics *metrics.MetricsRegistry
}

// NewClient creates a new instance, reading config from environment variables
func NewClient(metricsReg *metrics.MetricsRegistry) *Client {
	baseURL := os.Getenv("PORTAL_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8600/api" // Default sidecar address
	}
	apiKey := os.Getenv("PORTAL_API_KEY")

	rps := 1.0
	if v := os.Getenv("PORTAL_RATE_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rps = parsed
		}
	}

	// Navigations behind the sidecar can take a while (page loads, blob
	// downloads), so the timeout is generous.
	client := &http.Client{Timeout: 120 * time.Second}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		metrics: metricsReg,
	}
}

// doGET serializes access to the sidecar, does a GET with the auth header,
// and returns the raw body bytes with the status code.
func (c *Client) doGET(ctx context.Context, endpoint, metricName string) ([]byte, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	if c.metrics != nil {
		c.metrics.PortalRequestDuration.WithLabelValues(metricName).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countPortal(metricName, "error")
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countPortal(metricName, "error")
		return nil, resp.StatusCode, err
	}

	c.countPortal(metricName, strconv.Itoa(resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusOK:
		return body, resp.StatusCode, nil
	case http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	default:
		return nil, resp.StatusCode, fmt.Errorf("portal: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) countPortal(endpoint, status string) {
	if c.metrics != nil {
		c.metrics.PortalRequestsTotal.WithLabelValues(endpoint, status).Inc()
	}
}

// SessionStatus reports the sidecar's authentication state.
func (c *Client) SessionStatus(ctx context.Context) (*SessionStatus, error) {
	body, _, err := c.doGET(ctx, "/session/status", "session_status")
	if err != nil {
		return nil, err
	}
	var status SessionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("portal: decoding session status: %w", err)
	}
	return &status, nil
}

// ListRecords fetches one page of the record list. The sidecar walks the
// portal's paginated table UI, so page turns are slow; callers cache.
func (c *Client) ListRecords(ctx context.Context, page, perPage int) (*RecordList, error) {
	endpoint := fmt.Sprintf("/records?page=%d&per_page=%d", page, perPage)
	body, _, err := c.doGET(ctx, endpoint, "list_records")
	if err != nil {
		return nil, err
	}
	var list RecordList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("portal: decoding record list: %w", err)
	}
	return &list, nil
}

// GetRecord fetches the metadata document for one record. The raw map is
// the opaque property bag merged into GeoJSON output; the typed view feeds
// DTOs and the record store.
func (c *Client) GetRecord(ctx context.Context, recordID string) (*entities.FlightRecord, map[string]any, error) {
	body, _, err := c.doGET(ctx, "/records/"+recordID, "get_record")
	if err != nil {
		return nil, nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("portal: decoding record envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, nil, ErrNotFound
	}

	var raw map[string]any
	if err := json.Unmarshal(envelope.Data, &raw); err != nil {
		return nil, nil, fmt.Errorf("portal: decoding record metadata: %w", err)
	}

	var record entities.FlightRecord
	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		return nil, nil, fmt.Errorf("portal: decoding record fields: %w", err)
	}
	if record.ID == "" {
		record.ID = recordID
	}

	return &record, raw, nil
}

// GetRouteBlob fetches the record's binary route artifact.
func (c *Client) GetRouteBlob(ctx context.Context, recordID string) ([]byte, error) {
	body, _, err := c.doGET(ctx, "/records/"+recordID+"/route", "get_route_blob")
	if err != nil {
		return nil, err
	}
	return body, nil
}
