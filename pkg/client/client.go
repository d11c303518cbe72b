package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"nodedash/pkg/models"
	"nodedash/pkg/status"
)

const (
	maxErrorBody        = 512
	defaultRetryMax     = 3
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	defaultTimeout      = 30 * time.Second
)

// ErrInvalidBaseURL is returned when the dashboard URL cannot be used.
var ErrInvalidBaseURL = errors.New("dashboard URL must be an absolute http(s) URL")

// APIError represents a non-200 answer from the dashboard.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return "dashboard returned status " + http.StatusText(e.StatusCode)
	}
	return "dashboard returned status " + http.StatusText(e.StatusCode) + ": " + e.Body
}

// Health is the body of GET /healthz.
type Health struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	DefaultContainer string `json:"default_container"`
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// Client talks to a running dashboard's JSON API.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New creates a Client for the dashboard at opts.BaseURL.
func New(opts Options) (*Client, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, opts.BaseURL)
	}

	if opts.RetryMax < 0 {
		opts.RetryMax = defaultRetryMax
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = defaultRetryWaitMin
	}
	if opts.RetryWaitMax < opts.RetryWaitMin {
		opts.RetryWaitMax = defaultRetryWaitMax
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    createRetryableClient(opts),
	}, nil
}

func createRetryableClient(opts Options) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = nil
	client.CheckRetry = retryOnConnectionError
	return client
}

// retryOnConnectionError retries only when no response arrived. Any HTTP
// answer, including 429 and 5xx, is returned to the caller unchanged.
func retryOnConnectionError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the last error itself
	}
	return false, nil
}

// Status fetches one status report. Query fields left empty take the
// dashboard's defaults.
func (c *Client) Status(ctx context.Context, q status.Query) (*models.StatusReport, error) {
	values := url.Values{}
	if q.Container != "" {
		values.Set("container", q.Container)
	}
	if q.Since != "" {
		values.Set("since", q.Since)
	}
	if q.Tail != "" {
		values.Set("tail", q.Tail)
	}

	endpoint := c.baseURL + "/api/status"
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var report models.StatusReport
	if err := c.getJSON(ctx, endpoint, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health fetches the dashboard's own health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.getJSON(ctx, c.baseURL+"/healthz", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
