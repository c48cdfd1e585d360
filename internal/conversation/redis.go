package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists contexts in Redis so a session survives process
// restarts. Keys carry a TTL refreshed on every access, which doubles
// as the retention policy.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at redisURL and verifies the
// connection.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func contextKey(sessionID string) string {
	return "context:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	data, err := s.client.Get(ctx, contextKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrContextNotFound)
		}
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	var c Context
	if err := sonic.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}

	s.client.Expire(ctx, contextKey(sessionID), s.ttl)
	return &c, nil
}

func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string) (*Context, error) {
	c, err := s.Get(ctx, sessionID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, ErrContextNotFound) {
		return NewContext(), nil
	}
	return nil, err
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Context) error {
	data, err := sonic.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if err := s.client.Set(ctx, contextKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, contextKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	return nil
}
