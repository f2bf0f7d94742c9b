package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// clearIfScript deletes KEYS[1] only while it holds ARGV[1].
var clearIfScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisFactory stores one token per browser session under
// "session:<id>:token". Entries expire with the token.
type RedisFactory struct {
	client *redis.Client
	prefix string
	maxTTL time.Duration
}

// NewRedisFactory creates a Redis-backed token store factory. maxTTL bounds
// how long a token is kept and is used as-is for tokens without exp.
func NewRedisFactory(client *redis.Client, maxTTL time.Duration) *RedisFactory {
	return &RedisFactory{
		client: client,
		prefix: "session:",
		maxTTL: maxTTL,
	}
}

func (f *RedisFactory) Scope(sessionID string) Store {
	return &redisStore{client: f.client, key: f.prefix + sessionID + ":" + Key, maxTTL: f.maxTTL}
}

type redisStore struct {
	client *redis.Client
	key    string
	maxTTL time.Duration
}

func (s *redisStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: redis get: %w", err)
	}
	return val, nil
}

func (s *redisStore) Save(ctx context.Context, token string) error {
	ttl, err := lifetime(token, s.maxTTL)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis del: %w", err)
	}
	return nil
}

func (s *redisStore) ClearIf(ctx context.Context, token string) error {
	if err := clearIfScript.Run(ctx, s.client, []string{s.key}, token).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis clear-if: %w", err)
	}
	return nil
}
