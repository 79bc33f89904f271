package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"podcast-orchestrator/internal/domain"
)

const (
	cacheSize = 256
	cacheTTL  = 15 * time.Minute
)

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
	IncludeImages  bool     `json:"include_images,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Client issues keyword queries to a Tavily-style search API. Identical
// queries within the TTL are served from an in-process cache.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	cache   *expirable.LRU[string, *domain.SearchResponse]
}

// NewClient constructs a search client. An empty API key is allowed; calls
// then fail with *domain.NotConfiguredError before any network I/O.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  httpClient,
		cache:   expirable.NewLRU[string, *domain.SearchResponse](cacheSize, nil, cacheTTL),
	}
}

var _ domain.SearchClient = (*Client)(nil)

// Search runs one query and normalizes the ranked results.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	if c.APIKey == "" {
		return nil, &domain.NotConfiguredError{
			Service: "web search",
			Hint:    "set SEARCH_API_KEY in the environment",
		}
	}

	key := cacheKey(query, opts)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	depth := opts.Depth
	if depth == "" {
		depth = domain.SearchDepthBasic
	}
	body := searchRequest{
		Query:          query,
		SearchDepth:    string(depth),
		MaxResults:     opts.MaxResults,
		IncludeAnswer:  opts.IncludeAnswer,
		IncludeImages:  opts.IncludeImages,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.TransportError{Status: resp.StatusCode, Body: string(b)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	normalized := &domain.SearchResponse{
		Query:  query,
		Answer: parsed.Answer,
	}
	for _, r := range parsed.Results {
		normalized.Results = append(normalized.Results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}

	c.cache.Add(key, normalized)
	return normalized, nil
}

func cacheKey(query string, opts domain.SearchOptions) string {
	return fmt.Sprintf("%s|%s|%d|%t|%t|%s|%s",
		query, opts.Depth, opts.MaxResults, opts.IncludeAnswer, opts.IncludeImages,
		strings.Join(opts.IncludeDomains, ","), strings.Join(opts.ExcludeDomains, ","))
}
