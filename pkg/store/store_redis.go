package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ruanvs/investec-agent/pkg/config"
)

const conversationKeyPrefix = "conversation_"

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(config *config.Config) *RedisStore {
	return &RedisStore{
		Client: redis.NewClient(&redis.Options{
			Addr: config.RedisAddr,
			DB:   config.RedisDB,
		}),
	}
}

func (s *RedisStore) AddConversationMessage(id string, msg ConversationMessage) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("could not marshal conversation message: %w", err)
	}

	return s.Client.RPush(context.Background(), conversationKeyPrefix+id, string(encoded)).Err()
}

func (s *RedisStore) GetConversation(id string) ([]ConversationMessage, error) {
	items, err := s.Client.LRange(context.Background(), conversationKeyPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not read conversation: %w", err)
	}

	messages := make([]ConversationMessage, 0, len(items))
	for _, item := range items {
		var msg ConversationMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("could not unmarshal conversation message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (s *RedisStore) ResetConversation(id string) error {
	return s.Client.Del(context.Background(), conversationKeyPrefix+id).Err()
}
