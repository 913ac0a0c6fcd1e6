package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Repo = (*RedisRepo)(nil)

// RedisRepo keeps each key of the persisted record as its own Redis string
// under prefix. The prefix isolates one client context from another.
type RedisRepo struct {
	client redis.Cmdable
	prefix string
}

func New(client redis.Cmdable, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "tracker:session:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) key(k string) string {
	return r.prefix + k
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[redisrepo Get] %s: %w", key, err)
	}
	return v, true, nil
}

// SetAll writes the entries in a MULTI/EXEC block so readers never see a mix.
func (r *RedisRepo) SetAll(ctx context.Context, values map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[redisrepo SetAll] %w", err)
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("[redisrepo Delete] %w", err)
	}
	return nil
}
