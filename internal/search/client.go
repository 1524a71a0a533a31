// Package search wraps the external search provider behind a small client
// interface so executors can be tested without the real provider.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ResultItem is one item returned by the provider for a monitor's query.
type ResultItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Snippet     string    `json:"snippet,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Client executes a search query against the external provider.
type Client interface {
	Search(ctx context.Context, query string) ([]ResultItem, error)
}

// ProviderError is returned when the provider call fails. Transient errors
// (network failures, 429, 5xx) are worth retrying with backoff; anything
// else is terminal for the attempt.
type ProviderError struct {
	Status    int // HTTP status, 0 for transport errors
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider: status %d", e.Status)
	}
	return fmt.Sprintf("provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a provider error worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// HTTPClient calls a JSON search API: GET {BaseURL}?q={query} with an
// Authorization bearer key, expecting {"results": [...]}.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewHTTPClient returns a provider client with the given request timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Search runs one query. The context bounds the call in addition to the
// client timeout.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]ResultItem, error) {
	u := c.BaseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ProviderError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &ProviderError{Status: resp.StatusCode, Transient: true}
	default:
		return nil, &ProviderError{Status: resp.StatusCode}
	}

	var body struct {
		Results []ResultItem `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProviderError{Transient: true, Err: fmt.Errorf("decode response: %w", err)}
	}
	return body.Results, nil
}
