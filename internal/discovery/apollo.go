// Package discovery finds people to contact at a target company and
// records them against the job application.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultApolloBaseURL is the people search API root.
	DefaultApolloBaseURL = "https://api.apollo.io/v1"
	// DefaultTimeout bounds each search request.
	DefaultTimeout = 30 * time.Second
)

// Person is one people-search hit.
type Person struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url"`
	Email       string `json:"email"`
}

// SearchRequest is the mixed_people/search body.
type SearchRequest struct {
	OrganizationNames []string `json:"organization_names"`
	PersonTitles      []string `json:"person_titles"`
	PersonLocations   []string `json:"person_locations,omitempty"`
	Page              int      `json:"page"`
	PerPage           int      `json:"per_page"`
}

type searchResponse struct {
	People []Person `json:"people"`
}

// APIError is a non-200 search response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Apollo API error: %d - %s", e.StatusCode, e.Body)
}

// ApolloClient searches people by company and title.
type ApolloClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ApolloConfig configures an ApolloClient.
type ApolloConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewApolloClient creates a client. The API key is required.
func NewApolloClient(cfg ApolloConfig) (*ApolloClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apollo API key is required")
	}
	c := &ApolloClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultApolloBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// SearchPeople runs one people search.
func (c *ApolloClient) SearchPeople(ctx context.Context, req SearchRequest) ([]Person, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mixed_people/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("people search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out searchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.People, nil
}
