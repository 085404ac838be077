package assistants

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/encoding"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/tools"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

const (
	// DefaultMaxRetries is the number of retries on an empty LLM response.
	DefaultMaxRetries = 3
	// DefaultMaxMessages caps the message history of a single run.
	DefaultMaxMessages = 100
	// DefaultMaxToolCalls caps the total number of tool calls in a single run.
	DefaultMaxToolCalls = 20
	// DefaultMaxContentSize caps the content bytes sent to the LLM per call.
	DefaultMaxContentSize = 512 * 1024
	// DefaultMaxNotFound caps consecutive calls to tools that do not exist.
	DefaultMaxNotFound = 3
)

// Assistant runs the tool-calling loop against a language model: it sends the
// system prompt, history and user question, executes the tool calls the model
// requests, feeds the results back, and repeats until the model produces a
// final answer or a limit trips.
type Assistant[O chatmodel.ContentProvider] struct {
	LLM          llms.Model
	OutputParser chatmodel.OutputParser[O]

	toolsByName map[string]tools.ITool
	toolsNames  []string
	tools       []tools.ITool
	llmToolDefs []llms.Tool

	cfg         *Config
	name        string
	description string
	sysprompt   prompts.FormatPrompter
	runMessages []llms.MessageContent
	inputParser func(string) (string, error)
}

var (
	_ TypeableAssistant[chatmodel.OutputResult] = (*Assistant[chatmodel.OutputResult])(nil)
	_ IMCPAssistant                             = (*Assistant[chatmodel.OutputResult])(nil)
)

// NewAssistant initializes the Assistant.
func NewAssistant[O chatmodel.ContentProvider](
	llmModel llms.Model,
	sysprompt prompts.FormatPrompter,
	options ...Option) *Assistant[O] {
	ret := &Assistant[O]{
		cfg:         NewConfig(options...),
		LLM:         llmModel,
		sysprompt:   sysprompt,
		name:        "Generic Assistant",
		description: "An AI assistant that can perform various tasks.",
	}

	var output O
	if parser, err := encoding.NewTypedOutputParser(output, ret.cfg.Mode); err == nil {
		ret.OutputParser = parser
	}

	return ret
}

// WithOutputParser sets the output parser for the final response.
func (a *Assistant[O]) WithOutputParser(outputParser chatmodel.OutputParser[O]) *Assistant[O] {
	a.OutputParser = outputParser
	return a
}

// WithInputParser sets the input parser for the Assistant.
func (a *Assistant[O]) WithInputParser(inputParser func(string) (string, error)) *Assistant[O] {
	a.inputParser = inputParser
	return a
}

// WithName sets the name of the Assistant, when used in a prompt of other Assistants or LLMs.
func (a *Assistant[O]) WithName(name string) *Assistant[O] {
	a.name = name
	return a
}

// WithDescription sets the description of the Assistant, to be used in the prompt of other Assistants or LLMs.
func (a *Assistant[O]) WithDescription(description string) *Assistant[O] {
	a.description = description
	return a
}

// WithTools adds new tools to the Assistant,
// existing tools are not replaced.
func (a *Assistant[O]) WithTools(list ...tools.ITool) *Assistant[O] {
	if a.toolsByName == nil {
		a.toolsByName = make(map[string]tools.ITool)
	}
	for _, tool := range list {
		name := tool.Name()
		// use lowercase for the key
		nameLowerCase := strings.ToLower(name)
		if a.toolsByName[nameLowerCase] == nil {
			a.toolsByName[nameLowerCase] = tool
			a.toolsNames = append(a.toolsNames, name)
			a.tools = append(a.tools, tool)
			a.llmToolDefs = append(a.llmToolDefs, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        name,
					Description: tool.Description(),
					Parameters:  tool.Parameters(),
				},
			})
		}
	}
	return a
}

func (a *Assistant[O]) Name() string {
	return a.name
}

func (a *Assistant[O]) Description() string {
	return a.description
}

func (a *Assistant[O]) GetTools() []tools.ITool {
	return a.tools
}

func (a *Assistant[O]) GetCallback() Callback {
	return a.cfg.CallbackHandler
}

// LastRunMessages returns all messages of the last run, including the tool
// calls and their results.
func (a *Assistant[O]) LastRunMessages() []llms.MessageContent {
	return a.runMessages
}

func (a *Assistant[O]) FormatPrompt(promptInputs map[string]any) (llms.PromptValue, error) {
	return a.sysprompt.FormatPrompt(llmutils.MergeInputs(a.cfg.PromptInput, promptInputs))
}

func (a *Assistant[O]) GetPromptInputVariables() []string {
	return a.sysprompt.GetInputVariables()
}

// GetSystemPrompt generates the system prompt for the Assistant.
func (a *Assistant[O]) GetSystemPrompt(promptInputs map[string]any) (string, error) {
	promptValue, err := a.FormatPrompt(promptInputs)
	if err != nil {
		return "", err
	}
	systemPrompt := strings.TrimRight(promptValue.String(), "\n")

	if a.OutputParser != nil {
		outputSchema := strings.TrimRight(a.OutputParser.GetFormatInstructions(), "\n")
		if outputSchema != "" {
			systemPrompt = fmt.Sprintf("%s\n\n# OUTPUT SCHEMA\n%s", systemPrompt, outputSchema)
		}
	}
	return systemPrompt, nil
}

func (a *Assistant[O]) RegisterMCP(registrator McpServerRegistrator) error {
	return registrator.RegisterPrompt(a.Name(), a.Description(), func(ctx context.Context, input chatmodel.MCPInputRequest) (*mcp.PromptResponse, error) {
		return a.CallMCP(ctx, input)
	})
}

func (a *Assistant[O]) CallMCP(ctx context.Context, input chatmodel.MCPInputRequest) (*mcp.PromptResponse, error) {
	if chatmodel.GetChatContext(ctx) == nil {
		ctx = chatmodel.WithChatContext(ctx, chatmodel.NewChatContext(input.ChatID, nil))
	}

	resp, err := a.Call(ctx, input.Input, nil)
	if err != nil {
		return nil, err
	}

	var messages []*mcp.PromptMessage
	for _, choice := range resp.Choices {
		messages = append(messages, mcp.NewPromptMessage(mcp.NewTextContent(choice.Content), mcp.RoleAssistant))
	}
	return mcp.NewPromptResponse(a.Description(), messages...), nil
}

func (a *Assistant[O]) Call(ctx context.Context, input string, promptInputs map[string]any) (*llms.ContentResponse, error) {
	return a.Run(ctx, input, promptInputs, nil)
}

func (a *Assistant[O]) Run(ctx context.Context, input string, promptInputs map[string]any, optionalOutputType *O) (*llms.ContentResponse, error) {
	// reset the run messages
	a.runMessages = nil

	callback := a.cfg.CallbackHandler
	if callback != nil {
		callback.OnAssistantStart(ctx, a, input)
	}

	resp, err := a.run(ctx, input, promptInputs, optionalOutputType)
	if err != nil {
		if callback != nil {
			callback.OnAssistantError(ctx, a, input, err)
		}
		return nil, err
	}
	if callback != nil {
		callback.OnAssistantEnd(ctx, a, input, resp)
	}
	return resp, nil
}

func (a *Assistant[O]) run(ctx context.Context, input string, promptInputs map[string]any, optionalOutputType *O) (*llms.ContentResponse, error) {
	cfg := a.cfg
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return nil, errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	systemPrompt, err := a.GetSystemPrompt(promptInputs)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to format system prompt")
	}

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
	}
	for _, example := range cfg.Examples {
		messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeHuman, example.Prompt))
		messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeAI, example.Completion))
	}
	if cfg.Store != nil {
		prevMessages := cfg.Store.Messages(ctx)
		logger.ContextKV(ctx, xlog.DEBUG,
			"assistant", a.name,
			"chat_id", chatID,
			"message_history", len(prevMessages))
		for _, msg := range prevMessages {
			messageHistory = append(messageHistory, llms.TextParts(msg.GetType(), msg.GetContent()))
		}
	}

	parsedInput := input
	if parsedInput != "" {
		if a.inputParser != nil {
			parsedInput, err = a.inputParser(parsedInput)
			if err != nil {
				return nil, errors.WithMessage(err, "failed to parse input")
			}
		}
		messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeHuman, parsedInput))
	}

	var extraOptions []Option
	if len(a.llmToolDefs) > 0 {
		extraOptions = append(extraOptions, WithTools(a.llmToolDefs))
	}
	callOpts := cfg.GetCallOptions(extraOptions...)

	assistantName := a.Name()
	bytesLimit := uint64(values.NumbersCoalesce(cfg.MaxLength, DefaultMaxContentSize))
	toolsLimit := values.NumbersCoalesce(cfg.MaxToolCalls, DefaultMaxToolCalls)
	messagesLimit := values.NumbersCoalesce(cfg.MaxMessages, DefaultMaxMessages)

	var resp *llms.ContentResponse
	var totalToolExecuted int
	retryCount := 0
	consecutiveNotFoundCount := 0

	for {
		if len(messageHistory) >= messagesLimit {
			return nil, errors.Newf("assistant %s: the messages count exceeded limit", assistantName)
		}
		if bytesSent := llmutils.CountMessagesContentSize(messageHistory); bytesSent > bytesLimit {
			return nil, errors.Newf("assistant %s: the content size exceeded limit", assistantName)
		}

		resp, err = a.LLM.GenerateContent(ctx, messageHistory, callOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate content from LLM")
		}

		// Check for empty response and retry if needed
		if len(resp.Choices) == 0 {
			retryCount++
			if retryCount >= DefaultMaxRetries {
				logger.ContextKV(ctx, xlog.ERROR,
					"assistant", assistantName,
					"status", "max_retries_exceeded",
					"input", slices.StringUpto(parsedInput, 64),
					"retry_count", retryCount,
				)
				return nil, errors.Newf("assistant %s: LLM returned empty response after %d retries", assistantName, retryCount)
			}
			logger.ContextKV(ctx, xlog.WARNING,
				"assistant", assistantName,
				"status", "retrying_empty_response",
				"retry_count", retryCount,
			)
			continue
		}

		var toolExecuted, notFoundCount int
		toolExecuted, notFoundCount, messageHistory, err = a.executeToolCalls(ctx, cfg, messageHistory, resp)
		if err != nil {
			return nil, err
		}

		if toolExecuted == 0 {
			break
		}
		totalToolExecuted += toolExecuted
		if notFoundCount > 0 {
			consecutiveNotFoundCount += notFoundCount
			if consecutiveNotFoundCount > DefaultMaxNotFound {
				return nil, errors.Newf("assistant %s: the number of not found tools is exceeded", assistantName)
			}
		} else {
			consecutiveNotFoundCount = 0
		}
		if totalToolExecuted >= toolsLimit {
			return nil, errors.Newf("assistant %s: the tool calls limit is exceeded", assistantName)
		}
	}

	result := resp.Choices[0].Content
	if len(resp.Choices) > 1 {
		// Combine the content of multiple choices
		var combined strings.Builder
		for i, choice := range resp.Choices {
			if i > 0 {
				combined.WriteString("\n\n")
			}
			combined.WriteString(choice.Content)
		}
		result = combined.String()
	}

	if optionalOutputType != nil && a.OutputParser != nil {
		finalOutput, err := a.OutputParser.Parse(result)
		if err != nil {
			logger.ContextKV(ctx, xlog.DEBUG,
				"assistant", assistantName,
				"status", "failed_to_parse_llm_response",
				"err", err.Error(),
				"output_parser", a.OutputParser.Type(),
				"result", slices.StringUpto(result, 256),
			)
			return nil, err
		}
		*optionalOutputType = *finalOutput
		result = (*finalOutput).GetContent()
	}

	a.runMessages = append(a.runMessages, llms.TextParts(llms.ChatMessageTypeAI, result))

	if cfg.Store != nil && !cfg.SkipMessageHistory {
		if parsedInput != "" {
			_ = cfg.Store.Add(ctx, &llms.HumanChatMessage{Content: parsedInput})
		}
		_ = cfg.Store.Add(ctx, &llms.AIChatMessage{Content: result})

		logger.ContextKV(ctx, xlog.DEBUG,
			"assistant", assistantName,
			"chat_id", chatID,
			"status", "added_message_history",
			"human", slices.StringUpto(parsedInput, 64),
			"ai", slices.StringUpto(result, 64),
		)
	}

	return resp, nil
}

// executeToolCalls executes the tool calls in the response concurrently and
// returns the updated message history. The tool results are appended in the
// order of the original tool calls regardless of completion order.
func (a *Assistant[O]) executeToolCalls(ctx context.Context, cfg *Config, messageHistory []llms.MessageContent, resp *llms.ContentResponse) (int, int, []llms.MessageContent, error) {
	executedCount := 0
	notFoundCount := 0

	type toolCallResult struct {
		toolCall llms.ToolCall
		response string
		err      error
		notFound bool
	}

	var toolCalls []llms.ToolCall
	for _, choice := range resp.Choices {
		var choiceToolCalls []llms.ToolCall
		for i, toolCall := range choice.ToolCalls {
			executedCount++

			if toolCall.ID == "" {
				toolCall.ID = fmt.Sprintf("%s_%d", toolCall.FunctionCall.Name, i)
			}
			toolCall.Type = values.StringsCoalesce(toolCall.Type, "function")
			choiceToolCalls = append(choiceToolCalls, toolCall)

			logger.ContextKV(ctx, xlog.DEBUG,
				"assistant", a.name,
				"status", "tool_call_found",
				"tool_call_id", toolCall.ID,
				"tool_call_name", toolCall.FunctionCall.Name,
			)
		}
		if len(choiceToolCalls) == 0 {
			continue
		}

		toolCalls = append(toolCalls, choiceToolCalls...)

		assistantResponse := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choiceToolCalls {
			assistantResponse.Parts = append(assistantResponse.Parts, tc)
		}
		messageHistory = append(messageHistory, assistantResponse)
		a.runMessages = append(a.runMessages, assistantResponse)
	}

	if executedCount == 0 {
		return executedCount, notFoundCount, messageHistory, nil
	}

	toolTimeout := cfg.ToolTimeout
	if toolTimeout <= 0 {
		toolTimeout = tools.DefaultTimeout
	}

	results := make([]toolCallResult, len(toolCalls))

	var wg sync.WaitGroup
	wg.Add(len(toolCalls))
	for i, toolCall := range toolCalls {
		go func(index int, tc llms.ToolCall) {
			defer wg.Done()
			toolName := tc.FunctionCall.Name
			toolArgs := tc.FunctionCall.Arguments

			// use lowercase for the key
			tool := a.toolsByName[strings.ToLower(toolName)]
			if tool == nil {
				if cfg.CallbackHandler != nil {
					cfg.CallbackHandler.OnToolNotFound(ctx, a, toolName)
				}

				availableTools := strings.Join(a.toolsNames, ", ")
				logger.ContextKV(ctx, xlog.WARNING,
					"assistant", a.name,
					"status", "tool_not_found",
					"tool_name", toolName,
					"available_tools", availableTools,
				)
				results[index] = toolCallResult{
					toolCall: tc,
					response: fmt.Sprintf("Tool `%s` not found. Please check the tool name and try again with exact match. Available tools: %s", toolName, availableTools),
					notFound: true,
				}
				return
			}

			if cfg.CallbackHandler != nil {
				cfg.CallbackHandler.OnToolStart(ctx, tool, toolArgs)
			}

			tctx, cancel := context.WithTimeout(ctx, toolTimeout)
			res, err := tool.Call(tctx, toolArgs)
			cancel()
			if err != nil {
				if cfg.CallbackHandler != nil {
					cfg.CallbackHandler.OnToolError(ctx, tool, toolArgs, err)
				}
				if errors.Is(err, chatmodel.ErrFailedUnmarshalInput) {
					res = llmutils.ToolErrorComment(toolName, "Failed to unmarshal input, check the JSON schema and try again.")
				} else {
					results[index] = toolCallResult{
						toolCall: tc,
						err:      errors.WithMessagef(err, "failed to call tool %s", toolName),
					}
					return
				}
			} else if cfg.CallbackHandler != nil {
				cfg.CallbackHandler.OnToolEnd(ctx, tool, toolArgs, res)
			}

			results[index] = toolCallResult{
				toolCall: tc,
				response: res,
			}
		}(i, toolCall)
	}
	wg.Wait()

	// Process results in the same order as the original tool calls
	for _, result := range results {
		if result.notFound {
			notFoundCount++
		}
		var content string
		if result.err != nil {
			// A failed tool call is reported back to the model, not fatal
			// to the run, the model may retry or work around it.
			content = fmt.Sprintf("Tool call failed: %s", result.err.Error())
			logger.ContextKV(ctx, xlog.WARNING,
				"assistant", a.name,
				"status", "tool_call_failed",
				"tool", result.toolCall.FunctionCall.Name,
				"err", result.err.Error(),
			)
		} else {
			content = result.response
		}

		toolCallResponse := llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: result.toolCall.ID,
					Name:       result.toolCall.FunctionCall.Name,
					Content:    content,
				},
			},
		}
		messageHistory = append(messageHistory, toolCallResponse)
		a.runMessages = append(a.runMessages, toolCallResponse)
	}

	return executedCount, notFoundCount, messageHistory, nil
}
