package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/httpserver"
	"github.com/globalguide/travelagent/mocks/mockllms"
	"github.com/globalguide/travelagent/planner"
	"github.com/globalguide/travelagent/tools"
	"github.com/globalguide/travelagent/tools/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/mock/gomock"
)

type plannerFunc func(ctx context.Context, question string) (string, error)

func (f plannerFunc) Plan(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

func postQuery(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func Test_Query(t *testing.T) {
	var gotQuestion string
	srv := httpserver.New(plannerFunc(func(ctx context.Context, question string) (string, error) {
		// every request must arrive with its own chat context
		assert.NotEmpty(t, chatmodel.GetChatID(ctx))
		gotQuestion = question
		return "## Lisbon\n\nDay 1: Alfama.", nil
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := postQuery(t, ts, `{"question": "3 days in Lisbon"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "## Lisbon\n\nDay 1: Alfama.", body["answer"])
	assert.Equal(t, "3 days in Lisbon", gotQuestion)
}

func Test_Query_BadRequest(t *testing.T) {
	srv := httpserver.New(plannerFunc(func(ctx context.Context, question string) (string, error) {
		t.Fatal("planner must not be called")
		return "", nil
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := postQuery(t, ts, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid request body")

	resp, body = postQuery(t, ts, `{"question": "   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "question must not be empty", body["error"])

	getResp, err := http.Get(ts.URL + "/query")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
}

func Test_Query_PlannerError(t *testing.T) {
	srv := httpserver.New(plannerFunc(func(ctx context.Context, question string) (string, error) {
		return "", errors.New("upstream exploded: key=secret")
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := postQuery(t, ts, `{"question": "plan a trip"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	// internal detail must not leak to the client
	assert.Equal(t, "failed to generate a travel plan, please try again", body["error"])
	assert.NotContains(t, body["error"], "secret")
}

func Test_Index(t *testing.T) {
	srv := httpserver.New(plannerFunc(func(ctx context.Context, question string) (string, error) {
		return "", nil
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	page := buf.String()
	assert.Contains(t, page, "<form id=\"form\">")
	assert.Contains(t, page, "/query")

	nfResp, err := http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	defer nfResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, nfResp.StatusCode)

	postResp, err := http.Post(ts.URL+"/", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer postResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, postResp.StatusCode)
}

// Test_Query_EndToEnd drives the full stack: HTTP handler, assistant loop,
// and a weather tool backed by a fixture upstream.
func Test_Query_EndToEnd(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "testkey")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lisbon", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":21.5,"feels_like":20.1,"humidity":60},"weather":[{"description":"clear sky"}],"wind":{"speed":3.2}}`))
	}))
	defer upstream.Close()

	currentTool, err := weather.NewCurrent()
	require.NoError(t, err)
	currentTool.WithBaseURL(upstream.URL)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	calls := 0
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
			calls++
			if calls == 1 {
				return &llms.ContentResponse{
					Choices: []*llms.ContentChoice{
						{
							ToolCalls: []llms.ToolCall{
								{
									ID:   "call_weather",
									Type: "function",
									FunctionCall: &llms.FunctionCall{
										Name:      weather.CurrentToolName,
										Arguments: `{"location":"Lisbon"}`,
									},
								},
							},
						},
					},
				}, nil
			}
			// the tool result with the fixture temperature must be in the history
			last := messages[len(messages)-1]
			tr, ok := last.Parts[0].(llms.ToolCallResponse)
			require.True(t, ok)
			assert.Contains(t, tr.Content, "21.5")
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{Content: "It is 21.5°C and clear in Lisbon, perfect for walking Alfama.", StopReason: "stop"},
				},
			}, nil
		}).Times(2)

	pl, err := planner.NewWithTools(mockLLM, []tools.ITool{currentTool})
	require.NoError(t, err)

	ts := httptest.NewServer(httpserver.New(pl).Handler())
	defer ts.Close()

	resp, body := postQuery(t, ts, `{"question": "What is the weather like in Lisbon today?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["answer"], "21.5")
}
