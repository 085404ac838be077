package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// MCPInputRequest is the input of an assistant exposed over MCP.
// The chat ID keeps a conversation across calls, a new one is created
// when it is empty.
type MCPInputRequest struct {
	ChatID string `json:"chatID,omitempty" jsonschema:"title=Chat ID,description=The ID of the chat to continue, a new chat is created when empty."`
	Input  string `json:"input" jsonschema:"title=Input,description=The question or instruction for the assistant."`
}

func (r *MCPInputRequest) ParseInput(input string) error {
	if err := json.Unmarshal([]byte(input), r); err != nil {
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	return nil
}

func (r *MCPInputRequest) JSONSchemaExtend(sc *jsonschema.Schema) {
	sc.Title = "MCP Input Request"
}

// InputRequest is a plain question for an assistant.
type InputRequest struct {
	Input string `json:"input" jsonschema:"title=Input,description=The question or instruction for the assistant."`
}

func NewInputRequest(input string) *InputRequest {
	return &InputRequest{Input: input}
}

func (r *InputRequest) ParseInput(input string) error {
	if err := json.Unmarshal([]byte(input), r); err != nil {
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	return nil
}

func (r *InputRequest) GetContent() string {
	return r.Input
}

func (r *InputRequest) JSONSchemaExtend(sc *jsonschema.Schema) {
	sc.Title = "Input Request"
}

// OutputResult is a plain-text assistant result.
type OutputResult struct {
	Content string `json:"content" jsonschema:"title=Content,description=The content of the result."`
}

func NewOutputResult(content string) *OutputResult {
	return &OutputResult{Content: content}
}

func (r OutputResult) GetContent() string {
	return r.Content
}
