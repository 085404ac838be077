package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
)

var (
	// ErrFailedUnmarshalInput is returned by a tool when the arguments
	// provided by the model do not match the tool's schema.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")

	ErrInvalidChatContext = errors.New("invalid chat context")
)

// ContentProvider provides the content of a message for the chat history.
type ContentProvider interface {
	GetContent() string
}

// OutputParser is an interface for parsing the output of an LLM call.
type OutputParser[T any] interface {
	// Parse parses the output of an LLM call.
	// If the parser fails to decode the output, it should return ErrFailedUnmarshalInput.
	Parse(text string) (*T, error)
	// GetFormatInstructions returns a string describing the format of the output.
	GetFormatInstructions() string
	// Type returns the string type key uniquely identifying this class of parser.
	Type() string
}

// InputParser allows a tool input type to override the default JSON decoding.
type InputParser interface {
	ParseInput(input string) error
}

type Stringer interface {
	String() string
}

func Stringify(s any) string {
	if v, ok := s.(Stringer); ok {
		return v.String()
	}
	if v, ok := s.(ContentProvider); ok {
		return v.GetContent()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

type FewShotExample struct {
	Prompt     string
	Completion string
}

type FewShotExamples []FewShotExample

var _ llms.ChatMessage = (*String)(nil)
