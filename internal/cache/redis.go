package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubhouse-ops/membership-admin/internal/events"
)

// RedisCache stores entries under keys that embed the collection's current
// generation. Invalidation bumps the generation, so entries written for an
// older one are unreachable; the per-collection key set lets them be removed
// early instead of waiting for their TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing client. prefix namespaces every key.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) entryKey(tag events.Collection, gen int64, key string) string {
	return r.prefix + ":" + string(tag) + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (r *RedisCache) tagKey(tag events.Collection) string {
	return r.prefix + ":tag:" + string(tag)
}

func (r *RedisCache) genKey(tag events.Collection) string {
	return r.prefix + ":gen:" + string(tag)
}

func (r *RedisCache) Generation(ctx context.Context, tag events.Collection) (int64, error) {
	gen, err := r.client.Get(ctx, r.genKey(tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisCache) Get(ctx context.Context, tag events.Collection, gen int64, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.entryKey(tag, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return raw, err
}

func (r *RedisCache) Set(ctx context.Context, tag events.Collection, gen int64, key string, value []byte, ttl time.Duration) error {
	entry := r.entryKey(tag, gen, key)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entry, value, ttl)
	pipe.SAdd(ctx, r.tagKey(tag), entry)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateTag advances the generation before removing the old entries.
func (r *RedisCache) InvalidateTag(ctx context.Context, tag events.Collection) error {
	if err := r.client.Incr(ctx, r.genKey(tag)).Err(); err != nil {
		return err
	}
	tagKey := r.tagKey(tag)
	keys, err := r.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return err
	}
	keys = append(keys, tagKey)
	return r.client.Del(ctx, keys...).Err()
}
