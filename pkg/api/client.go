// Package api is a client for the remote taxonomy management API.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// DefaultBaseURL is the management API host.
const DefaultBaseURL = "https://api.contentstack.io"

// TermsDepth is the nesting depth requested when listing terms.
const TermsDepth = 5

// Config holds the connection settings. It is passed in explicitly; the
// client never reads the environment.
type Config struct {
	BaseURL         string
	ManagementToken string
	APIKey          string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// Client talks to the taxonomy endpoints.
type Client struct {
	baseURL    string
	token      string
	apiKey     string
	httpClient *http.Client
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures Client behavior.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		baseURL: base,
		token:   cfg.ManagementToken,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type taxonomiesResponse struct {
	Taxonomies []model.Taxonomy `json:"taxonomies"`
}

type termsResponse struct {
	Terms []model.TermRecord `json:"terms"`
}

// ListTaxonomies fetches every taxonomy of the stack.
func (c *Client) ListTaxonomies(ctx context.Context) ([]model.Taxonomy, error) {
	var resp taxonomiesResponse
	if err := c.getJSON(ctx, "/v3/taxonomies", nil, &resp); err != nil {
		return nil, fmt.Errorf("list taxonomies: %w", err)
	}
	return resp.Taxonomies, nil
}

// ListTerms fetches the flat term list of one taxonomy.
func (c *Client) ListTerms(ctx context.Context, taxonomyUID string) ([]model.TermRecord, error) {
	var resp termsResponse
	path := "/v3/taxonomies/" + url.PathEscape(taxonomyUID) + "/terms"
	query := url.Values{"depth": []string{fmt.Sprint(TermsDepth)}}
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("list terms of %s: %w", taxonomyUID, err)
	}
	return resp.Terms, nil
}

// getJSON sends a GET request and unmarshals the JSON response into dest.
// Returns *APIError for non-2xx responses. There are no retries.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("authorization", c.token)
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
