package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/gentools/pkg/dialects/cohere"
	"github.com/effective-security/gentools/pkg/dialects/generic"
	"github.com/effective-security/gentools/tools/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition(t *testing.T) {
	tool := websearch.New().Toolfn()

	assert.Equal(t, websearch.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "web search")
	assert.Equal(t, "results", tool.OutputLabel())
	assert.Empty(t, tool.Warnings())

	def := cohere.BuildDefinition(tool)
	require.Len(t, def.ParameterDefinitions, 3)
	assert.True(t, def.ParameterDefinitions["query"].IsRequired)
	assert.False(t, def.ParameterDefinitions["search_depth"].IsRequired)
	assert.Equal(t, "int", def.ParameterDefinitions["max_results"].Type)

	gdef := generic.BuildDefinition(tool)
	assert.Equal(t, []string{"query"}, gdef.Function.Parameters.Required)
	p, ok := gdef.Function.Parameters.Properties.Get("max_results")
	require.True(t, ok)
	assert.Equal(t, "integer", p.Type)
}

func TestRunEmptyQuery(t *testing.T) {
	tool := websearch.New().Toolfn()
	_, err := tool.Invoke(context.Background(), map[string]any{})
	assert.EqualError(t, err, "invalid request: empty query")
}

func TestRunNoAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	tool := websearch.New().Toolfn()
	_, err := tool.Invoke(context.Background(), map[string]any{"query": "test"})
	assert.EqualError(t, err, "TAVILY_API_KEY is not set")
}

func TestDispatch(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)

		assert.Equal(t, "What is capital of France", req.Query)
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 3, req.MaxResults)

		resp := websearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Test Result", URL: "https://example.com", Content: "Test content", Score: 0.9},
			},
		}
		if req.IncludeAnswer {
			resp.Answer = "Paris"
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	tool := websearch.New().
		WithBaseURL(server.URL).
		WithHTTPClient(server.Client()).
		Toolfn()

	call := generic.ToolCall{
		ID: "call_1",
		Function: &generic.FunctionCall{
			Name:      websearch.ToolName,
			Arguments: `{"query":"What is capital of France","search_depth":"advanced","max_results":3}`,
		},
	}
	msg, err := generic.Dispatch(context.Background(), tool, call, nil)
	require.NoError(t, err)
	assert.Equal(t, "call_1", msg.ToolCallID)
	assert.Contains(t, msg.Content[0].Text, `"results":{`)
	assert.Contains(t, msg.Content[0].Text, `"answer":"Paris"`)
}

func TestSearchResultString(t *testing.T) {
	res := &websearch.SearchResult{
		Answer: "Paris",
		Results: []tavilyModels.SearchResult{
			{Title: "Test Result", URL: "https://example.com", Content: "Test content", Score: 0.9},
		},
	}
	s := res.String()
	assert.Contains(t, s, "ANSWER: Paris\n")
	assert.Contains(t, s, "- URL: https://example.com\n")
}
