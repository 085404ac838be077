package store

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/tmc/langchaingo/llms"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llms.ChatMessage
}

// NewMemoryStore returns a process-local MessageStore. History does not
// survive a restart, use the Redis store for that.
func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(ctx context.Context) []llms.ChatMessage {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[chatID]
}

func (m *inMemory) Add(ctx context.Context, msg llms.ChatMessage) error {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.ChatMessage)
	}
	history := append(m.storage[chatID], msg)
	if len(history) > MaxHistoryMessages {
		history = history[len(history)-MaxHistoryMessages:]
	}
	m.storage[chatID] = history
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
