// Package websearch provides a web search tool backed by the Tavily
// API, annotated for dispatch in either tool-calling dialect.
package websearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/x/values"
)

const ToolName = "WebSearch"

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results"`
	Answer  string                      `json:"answer,omitempty"`
}

// Tool is a tool that provides a web search functionality
type Tool struct {
	baseURL    string
	httpClient *http.Client
}

func New() *Tool {
	return &Tool{
		httpClient: http.DefaultClient,
	}
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

// Toolfn returns the annotated tool record backed by this client.
func (t *Tool) Toolfn() *toolfn.Tool {
	return toolfn.NewNamed(ToolName, t.run).
		WithDescription("A tool that provides a web search functionality.").
		WithOutputLabel("results").
		WithParameter("query", toolfn.TypeString, "The query to search web.").
		WithOptionalParameter("search_depth", toolfn.TypeString, "The depth of the search, basic or advanced. Defaults to basic.").
		WithOptionalParameter("max_results", toolfn.TypeInt, "The maximum number of results to return.")
}

func (t *Tool) run(ctx context.Context, args map[string]any) (any, error) {
	ma := values.MapAny(args)
	query := ma.String("query")
	if query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	apikey := os.Getenv("TAVILY_API_KEY")
	if apikey == "" {
		return nil, errors.Errorf("TAVILY_API_KEY is not set")
	}

	client := tavilygo.NewClient(apikey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:         query,
		SearchDepth:   values.StringsCoalesce(ma.String("search_depth"), "basic"),
		IncludeAnswer: true,
	}
	if maxResults := ma.Int("max_results"); maxResults > 0 {
		searchReq.MaxResults = maxResults
	}

	searchResp, err := tavilygo.Search(client, searchReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}
