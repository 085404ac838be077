package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/llms"
)

var logger = xlog.NewPackageLogger("github.com/globalguide/travelagent", "store")

// The redis store keeps chat history in Redis lists so it survives restarts
// and can be shared across agent instances. Keys are namespaced as
// `/<prefix>/chatstore/messages/<chatID>` and the list is trimmed to the last
// MaxHistoryMessages entries on every write.
type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) MessageStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) messagesKey(chatID string) string {
	return path.Join(m.prefix, "chatstore", "messages", chatID)
}

func (m *redisStore) Messages(ctx context.Context) []llms.ChatMessage {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "no chat context")
		return nil
	}

	data, err := m.client.LRange(ctx, m.messagesKey(chatID), 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "LRange", "err", err.Error())
		return nil
	}

	var models []llms.ChatMessageModel
	for _, item := range data {
		var msg llms.ChatMessageModel
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal message", "err", err.Error())
			continue
		}
		models = append(models, msg)
	}
	return ToChatMessages(models)
}

func (m *redisStore) Add(ctx context.Context, msg llms.ChatMessage) error {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	model := llms.ConvertChatMessageToModel(msg)
	data, err := json.Marshal(model)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	key := m.messagesKey(chatID)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -MaxHistoryMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to store message in Redis")
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context) error {
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	if err := m.client.Del(ctx, m.messagesKey(chatID)).Err(); err != nil {
		return errors.Wrap(err, "failed to reset chat in Redis")
	}
	return nil
}
