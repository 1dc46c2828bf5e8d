package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore is an expiring key/value store for request-scoped state. Values
// are json round-tripped; a missing or expired key reads back as nil, not an
// error, since absence is the normal case for a fresh conversation.
type RedisStore[T any] struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore[T any](url, name string, log *zap.Logger, opts ...StoreOption[T]) (*RedisStore[T], error) {
	redis_options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("bad redis url: %w", err)
	}
	client := redis.NewClient(redis_options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis not reachable: %w", err)
	}

	store := &RedisStore[T]{
		client: client,
		name:   name,
		ttl:    _DEFAULT_TTL,
		log:    log.With(zap.String("store", name)),
	}
	for _, opt := range opts {
		opt.applyToRedis(store)
	}
	return store, nil
}

func (store *RedisStore[T]) Get(ctx context.Context, key string) (*T, error) {
	raw, err := store.client.Get(ctx, store.storeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		store.log.Error("get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

func (store *RedisStore[T]) Put(ctx context.Context, key string, value *T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := store.client.Set(ctx, store.storeKey(key), raw, store.ttl).Err(); err != nil {
		store.log.Error("put failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (store *RedisStore[T]) Delete(ctx context.Context, key string) error {
	return store.client.Del(ctx, store.storeKey(key)).Err()
}

func (store *RedisStore[T]) Close() error {
	return store.client.Close()
}

func (store *RedisStore[T]) storeKey(key string) string {
	return store.name + ":" + key
}
