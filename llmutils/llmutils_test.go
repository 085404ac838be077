package llmutils_test

import (
	"testing"

	"github.com/globalguide/travelagent/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func Test_CleanJSON(t *testing.T) {
	tcases := []struct {
		name string
		in   string
		exp  string
	}{
		{"plain", `{"answer":"ok"}`, `{"answer":"ok"}`},
		{"prefix", `Sure, here you go: {"answer":"ok"}`, `{"answer":"ok"}`},
		{"postfix", `{"answer":"ok"} hope that helps!`, `{"answer":"ok"}`},
		{"array", `the costs: [10, 20.5, -5] in USD`, `[10, 20.5, -5]`},
		{"no_json", `no json here`, `no json here`},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, string(llmutils.CleanJSON([]byte(tc.in))))
		})
	}
}

func Test_TrimBackticks(t *testing.T) {
	in := "```json\n{\"answer\":\"ok\"}\n```"
	assert.Equal(t, `{"answer":"ok"}`, llmutils.TrimBackticks(in))

	// no fences
	assert.Equal(t, `{"answer":"ok"}`, llmutils.TrimBackticks(`{"answer":"ok"}`))
}

func Test_StripComments(t *testing.T) {
	in := "<!-- @type=tool @name=search_web @reason=error -->\nupstream unavailable"
	assert.Equal(t, "upstream unavailable", llmutils.StripComments(in))
	assert.Equal(t, "plain", llmutils.StripComments("plain"))
}

func Test_MergeInputs(t *testing.T) {
	res := llmutils.MergeInputs(
		map[string]any{"currency": "USD", "days": 5},
		map[string]any{"currency": "EUR"},
	)
	assert.Equal(t, "EUR", res["currency"])
	assert.Equal(t, 5, res["days"])
}

func Test_CountMessagesContentSize(t *testing.T) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "abcd"),
		{
			Role: llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{
				llms.ToolCall{
					ID:           "1",
					FunctionCall: &llms.FunctionCall{Name: "get_current_weather", Arguments: `{"location":"London"}`},
				},
			},
		},
		{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{ToolCallID: "1", Content: "15C"},
			},
		},
	}
	exp := uint64(len("abcd") + len("get_current_weather") + len(`{"location":"London"}`) + len("15C"))
	assert.Equal(t, exp, llmutils.CountMessagesContentSize(msgs))
}
