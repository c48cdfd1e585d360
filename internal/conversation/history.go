package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// History holds one session's message transcript.
type History struct {
	Messages []*schema.Message `json:"messages"`
}

// Repository is keyed access to conversation transcripts fed back into
// model calls on later turns.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*History, error)
	Save(ctx context.Context, sessionID string, history *History) error
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisRepository stores transcripts in Redis with a TTL refreshed on
// every load.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository connects to Redis at redisURL and verifies the
// connection.
func NewRedisRepository(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepository, error) {
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

	return &RedisRepository{client: client, ttl: ttl}, nil
}

func historyKey(sessionID string) string {
	return "conversation:" + sessionID
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	data, err := r.client.Get(ctx, historyKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &History{Messages: []*schema.Message{}}, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var history History
	if err := sonic.Unmarshal([]byte(data), &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	r.client.Expire(ctx, historyKey(sessionID), r.ttl)
	return &history, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, history *History) error {
	data, err := sonic.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return r.client.Set(ctx, historyKey(sessionID), data, r.ttl).Err()
}

func (r *RedisRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	history.Messages = append(history.Messages, message)
	return r.Save(ctx, sessionID, history)
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, historyKey(sessionID)).Err()
}

// MemoryRepository is the in-process Repository used for development
// and tests.
type MemoryRepository struct {
	mu        sync.Mutex
	histories map[string]*History
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{histories: make(map[string]*History)}
}

func (r *MemoryRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, ok := r.histories[sessionID]
	if !ok {
		return &History{Messages: []*schema.Message{}}, nil
	}
	return history, nil
}

func (r *MemoryRepository) Save(ctx context.Context, sessionID string, history *History) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.histories[sessionID] = history
	return nil
}

func (r *MemoryRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	history.Messages = append(history.Messages, message)
	return r.Save(ctx, sessionID, history)
}

func (r *MemoryRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.histories, sessionID)
	return nil
}
