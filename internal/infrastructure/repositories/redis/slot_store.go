package redis

import (
	"context"
	"errors"
	"fmt"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const slotPrefix = "srtmon:slot:"

type RedisSlotStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSlotStore(client *redis.Client) ports.SlotStore {
	return &RedisSlotStore{
		client: client,
		prefix: slotPrefix,
	}
}

func (s *RedisSlotStore) slotKey(key string) string {
	return s.prefix + key
}

func (s *RedisSlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := s.client.Get(ctx, s.slotKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to get slot %q from Redis: %w", domain.ErrSlotStore, key, err)
	}
	return data, true, nil
}

// Set writes the slot without expiry; slots live as long as the store.
func (s *RedisSlotStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.slotKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set slot %q in Redis: %w", domain.ErrSlotStore, key, err)
	}
	return nil
}

func (s *RedisSlotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSlotStore, err)
	}
	return nil
}
