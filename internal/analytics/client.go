// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics talks to the external analytics provider and aggregates
// its numbers into dashboard reports. All upstream failures degrade to zero
// values; nothing in this package escalates a provider outage to the caller.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Client configuration constants
const (
	RequestTimeout = 10 * time.Second // HTTP request timeout
	MaxResponseLen = 1 << 20          // Maximum response body read (1MB)
	UserAgent      = "PageCraft/1.0"  // User-Agent header value
	MetricsLimit   = 10               // Rows requested per dimension
)

// Dimension types accepted by the provider's metrics endpoint.
const (
	DimensionURL      = "url"
	DimensionReferrer = "referrer"
	DimensionBrowser  = "browser"
	DimensionOS       = "os"
	DimensionDevice   = "device"
	DimensionCountry  = "country"
)

// Stats is the base traffic summary for one analytics website.
type Stats struct {
	Pageviews   int64   `json:"pageviews"`
	Visitors    int64   `json:"visitors"`
	AvgDuration float64 `json:"avg_duration"` // seconds
}

// MetricRow is one named bucket of a dimension breakdown.
type MetricRow struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Provider is the analytics backend as the rest of the application sees it.
// Client is the production implementation; tests substitute fakes.
type Provider interface {
	Stats(ctx context.Context, websiteID string, startAt, endAt time.Time) (Stats, error)
	Metrics(ctx context.Context, websiteID, dimension string, startAt, endAt time.Time) ([]MetricRow, error)
	CreateWebsite(ctx context.Context, name, domain string) (string, error)
	DeleteWebsite(ctx context.Context, websiteID string) error
}

// httpClient is the shared HTTP client with appropriate timeouts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Client talks to an umami-compatible analytics server. The auth token is
// cached process-wide and refreshed once on a 401/403 response.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	limiter  *rate.Limiter

	mu    sync.Mutex
	token string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL  string
	Username string
	Password string
	// RequestsPerSecond caps outbound calls; zero means 10 rps.
	RequestsPerSecond float64
	// HTTPClient overrides the shared client, used by tests.
	HTTPClient *http.Client
}

// NewClient creates a provider client. It does not authenticate until the
// first request.
func NewClient(opts ClientOptions) *Client {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = httpClient
	}
	return &Client{
		baseURL:  opts.BaseURL,
		username: opts.Username,
		password: opts.Password,
		http:     hc,
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

// Stats fetches the base traffic summary for the window.
func (c *Client) Stats(ctx context.Context, websiteID string, startAt, endAt time.Time) (Stats, error) {
	q := windowQuery(startAt, endAt)

	var resp struct {
		Pageviews struct {
			Value int64 `json:"value"`
		} `json:"pageviews"`
		Visitors struct {
			Value int64 `json:"value"`
		} `json:"visitors"`
		AvgDuration float64 `json:"avgDuration"`
	}
	if err := c.get(ctx, "/api/websites/"+url.PathEscape(websiteID)+"/stats", q, &resp); err != nil {
		return Stats{}, fmt.Errorf("fetching stats for %s: %w", websiteID, err)
	}
	return Stats{
		Pageviews:   resp.Pageviews.Value,
		Visitors:    resp.Visitors.Value,
		AvgDuration: resp.AvgDuration,
	}, nil
}

// Metrics fetches one dimension breakdown for the window.
func (c *Client) Metrics(ctx context.Context, websiteID, dimension string, startAt, endAt time.Time) ([]MetricRow, error) {
	q := windowQuery(startAt, endAt)
	q.Set("type", dimension)
	q.Set("limit", strconv.Itoa(MetricsLimit))

	var resp []struct {
		X string `json:"x"`
		Y int64  `json:"y"`
	}
	if err := c.get(ctx, "/api/websites/"+url.PathEscape(websiteID)+"/metrics", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s metrics for %s: %w", dimension, websiteID, err)
	}

	rows := make([]MetricRow, 0, len(resp))
	for _, r := range resp {
		rows = append(rows, MetricRow{Name: r.X, Value: r.Y})
	}
	return rows, nil
}

// CreateWebsite registers a website with the provider and returns its id.
func (c *Client) CreateWebsite(ctx context.Context, name, domain string) (string, error) {
	body := map[string]string{"name": name, "domain": domain}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/websites", nil, body, &resp); err != nil {
		return "", fmt.Errorf("creating analytics website: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("creating analytics website: empty id in response")
	}
	return resp.ID, nil
}

// DeleteWebsite removes a website from the provider.
func (c *Client) DeleteWebsite(ctx context.Context, websiteID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/websites/"+url.PathEscape(websiteID), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting analytics website %s: %w", websiteID, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// do performs an authenticated request. On a 401/403 the cached token is
// discarded, a fresh login is attempted, and the request is retried once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, err := c.roundTrip(ctx, method, path, query, body, token, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.invalidateToken(token)
		token, err = c.ensureToken(ctx)
		if err != nil {
			return err
		}
		status, err = c.roundTrip(ctx, method, path, query, body, token, out)
		if err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, status)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, token string, out any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// ensureToken returns the cached token, logging in when there is none.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	creds, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(creds))
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("logging in to analytics provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logging in to analytics provider: status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseLen)).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("logging in to analytics provider: empty token")
	}

	c.token = body.Token
	return c.token, nil
}

// invalidateToken drops the cached token if it is still the one that failed.
// A concurrent request may already have refreshed it.
func (c *Client) invalidateToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
	}
}

func windowQuery(startAt, endAt time.Time) url.Values {
	q := url.Values{}
	q.Set("startAt", strconv.FormatInt(startAt.UnixMilli(), 10))
	q.Set("endAt", strconv.FormatInt(endAt.UnixMilli(), 10))
	return q
}
