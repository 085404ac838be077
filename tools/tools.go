package tools

import (
	"context"
	"net/http"
	"time"

	"github.com/globalguide/travelagent/llmutils"
	mcp "github.com/metoro-io/mcp-golang"
)

// DefaultTimeout bounds every upstream call a tool makes, so one
// unreachable provider cannot stall a whole planning request.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient returns the default client used by tools for upstream calls.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}

type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a capability the planning agent may invoke: a weather lookup,
// a place search, a currency conversion, or an expense calculation.
// Tools are pure functions of their explicit arguments plus at most one
// upstream call; they hold no shared mutable state, so the orchestrator
// may call them in any order, repeatedly, or concurrently.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
