package chatmodel

import (
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// String is a plain-text output type that implements the ContentProvider interface.
// The travel planner uses it for the final markdown answer.
type String struct {
	value string
}

func NewString(str string) *String {
	return &String{
		value: str,
	}
}

// GetContent gets the content of the message for the chat history.
func (s String) GetContent() string {
	return s.value
}

func (s String) GetType() llms.ChatMessageType {
	return llms.ChatMessageTypeAI
}

func (s String) String() string {
	return s.value
}

func (s String) Bytes() []byte {
	return []byte(s.value)
}

func (s *String) ParseInput(input string) error {
	*s = String{value: strings.Trim(input, "\"")}
	return nil
}
