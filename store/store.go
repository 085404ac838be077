// Package store provides conversation history storage for the travel agent.
// Messages are keyed by the chat ID carried in the request context.
package store

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// MaxHistoryMessages caps the stored history per chat. Older messages are
// dropped first.
const MaxHistoryMessages = 50

// MessageStore keeps the message history of a chat. The chat ID comes from
// the chat context on ctx, calls without one fail with
// chatmodel.ErrInvalidChatContext.
type MessageStore interface {
	Messages(ctx context.Context) []llms.ChatMessage
	Add(ctx context.Context, msg llms.ChatMessage) error
	Reset(ctx context.Context) error
}

// ToChatMessages converts stored message models back to chat messages.
func ToChatMessages(models []llms.ChatMessageModel) []llms.ChatMessage {
	if len(models) == 0 {
		return nil
	}
	messages := make([]llms.ChatMessage, 0, len(models))
	for _, m := range models {
		messages = append(messages, m.ToChatMessage())
	}
	return messages
}
