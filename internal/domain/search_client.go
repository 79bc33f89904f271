package domain

import "context"

// SearchDepth selects how thorough the backing search API should be.
type SearchDepth string

const (
	SearchDepthBasic    SearchDepth = "basic"
	SearchDepthAdvanced SearchDepth = "advanced"
)

// SearchOptions tune one search call.
type SearchOptions struct {
	MaxResults     int
	Depth          SearchDepth
	IncludeImages  bool
	IncludeAnswer  bool
	IncludeDomains []string
	ExcludeDomains []string
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse carries one query's results plus an optional synthesized
// answer. Used only as LLM prompt context during enrichment; never persisted.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Answer  string         `json:"answer,omitempty"`
}

// SearchClient issues keyword queries to an external search API. A missing
// API key surfaces as *NotConfiguredError, which callers must treat as
// non-fatal and continue without enrichment.
type SearchClient interface {
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
}
