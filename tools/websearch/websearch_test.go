package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/tools/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		assert.Equal(t, "Do US citizens need a visa for Japan", req.Query)

		resp := websearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Japan visa policy", URL: "https://example.com/visa", Content: "Visa-free for 90 days", Score: 0.9},
			},
		}
		if req.IncludeAnswer {
			resp.Answer = "No visa needed for stays up to 90 days."
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := websearch.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, websearch.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "visa")

	params := llmutils.ToJSONIndent(tool.Parameters())
	assert.Contains(t, params, `"query"`)

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	resp, err := tool.Run(ctx, &websearch.SearchRequest{Query: "Do US citizens need a visa for Japan"})
	require.NoError(t, err)
	exp := "Answer: No visa needed for stays up to 90 days.\n1. Japan visa policy\n   https://example.com/visa"
	assert.Equal(t, exp, resp.String())

	out, err := tool.Call(ctx, `{"query":"Do US citizens need a visa for Japan"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Japan visa policy")
}

func Test_Tool_EmptyQuery(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	tool, err := websearch.New()
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &websearch.SearchRequest{Query: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")
}

func Test_Tool_NoAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")

	_, err := websearch.New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func Test_Tool_Real(t *testing.T) {
	t.Skip("skipping real test")

	if os.Getenv("TAVILY_API_KEY") == "" {
		t.Skip("TAVILY_API_KEY is not set")
	}

	tool, err := websearch.New()
	require.NoError(t, err)

	resp, err := tool.Call(context.Background(), `{"query":"What is capital of France"}`)
	require.NoError(t, err)
	assert.Contains(t, resp, "Paris")
}
