package slot

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores blobs as plain redis strings without expiry.
type RedisSlot struct {
	client *redis.Client
	prefix string
}

func NewRedisSlot(client *redis.Client, prefix string) *RedisSlot {
	return &RedisSlot{client: client, prefix: prefix}
}

func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisSlot) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisSlot) Close() error {
	return s.client.Close()
}

func (s *RedisSlot) key(key string) string {
	return s.prefix + key
}
