package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mailguard/pkg/platform/sentinel"
)

// RedisStore persists settings as fields of a single hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedis constructs a Redis-backed settings store on the default hash key.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: RedisKey}
}

func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w: %w", sentinel.ErrUnavailable, err)
	}
	return values, nil
}

func (s *RedisStore) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, s.key, values).Err(); err != nil {
		return fmt.Errorf("save settings: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// SaveMissing uses HSETNX per field inside a MULTI so concurrent seeders agree.
func (s *RedisStore) SaveMissing(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.HSetNX(ctx, s.key, k, v)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed settings: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
