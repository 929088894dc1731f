package numbering

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "crm:counter:"

// RedisStore keeps counters in Redis and relies on INCR atomicity.
type RedisStore struct {
	client redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// IncrementAndGet implements Store.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, redisKeyPrefix+key).Result()
}
