package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Address, err)
	}

	logger.Info("Successfully connected to Redis", zap.String("addr", opts.Address))
	return rdb, nil
}

// RedisStorage is a Local backed by Redis. Keys live under a namespace so
// each browser gets its own storage; entries expire after ttl of inactivity.
type RedisStorage struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStorage creates a RedisStorage rooted at namespace. ttl <= 0
// disables expiry.
func NewRedisStorage(client *redis.Client, namespace string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, namespace: namespace, ttl: ttl}
}

// Scoped returns a RedisStorage for the sub-namespace scope.
func (r *RedisStorage) Scoped(scope string) *RedisStorage {
	return &RedisStorage{client: r.client, namespace: r.namespace + ":" + scope, ttl: r.ttl}
}

func (r *RedisStorage) key(key string) string {
	return r.namespace + ":" + key
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %s from redis: %w", key, err)
	}
	if r.ttl > 0 {
		r.client.Expire(ctx, r.key(key), r.ttl)
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("setting %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s from redis: %w", key, err)
	}
	return nil
}
