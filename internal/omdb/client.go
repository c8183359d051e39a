package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher defines the lookup operation the sync coordinator depends on.
type Fetcher interface {
	Lookup(ctx context.Context, query Query) (*RawRecord, error)
}

// Client provides access to an OMDB-style API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an OMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches the record matching the query. Failures are classified into
// the package error taxonomy so the coordinator can decide retry behavior.
func (c *Client) Lookup(ctx context.Context, query Query) (*RawRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	if id := strings.TrimSpace(query.IMDbID); id != "" {
		params.Set("i", id)
	} else {
		params.Set("t", strings.TrimSpace(query.Title))
		if query.Year > 0 {
			params.Set("y", strconv.Itoa(query.Year))
		}
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: execute request (latency=%v): %w", ErrTransient, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: omdb returned 429 (latency=%v)", ErrRateLimited, latency)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: omdb returned %d (latency=%v)", ErrTransient, resp.StatusCode, latency)
	default:
		return nil, fmt.Errorf("%w: omdb returned %d (latency=%v)", ErrMalformed, resp.StatusCode, latency)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode omdb response: %w", ErrMalformed, err)
	}

	if !strings.EqualFold(body.Response, "True") {
		return nil, classifyAPIError(body.Error)
	}

	return body.normalize()
}

// classifyAPIError maps OMDB's in-band error strings onto the taxonomy. The
// API answers 200 for most failures and explains itself in the Error field.
func classifyAPIError(message string) error {
	normalized := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.Contains(normalized, "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case strings.Contains(normalized, "request limit"):
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	case normalized == "":
		return fmt.Errorf("%w: omdb reported failure without detail", ErrMalformed)
	default:
		return fmt.Errorf("%w: %s", ErrMalformed, message)
	}
}
