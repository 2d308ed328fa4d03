package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/ustamapp/ustamapp-client/internal/storage"
)

const defaultKeyPrefix = "ustamapp"

var _ storage.Store = (*RedisStore)(nil)

// RedisStore is device storage shared between processes, keyed per device
// under "<prefix>:<device>:<key>".
type RedisStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *goredis.Client, device string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	normalizedDevice := strings.ToLower(strings.TrimSpace(device))
	if normalizedDevice == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisStore{
		client: client,
		prefix: fmt.Sprintf("%s:%s", defaultKeyPrefix, normalizedDevice),
		ttl:    ttl,
	}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %q from redis: %w", key, err)
	}
	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %q to redis: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %q from redis: %w", key, err)
	}
	return nil
}

func (r *RedisStore) key(key string) string {
	return r.prefix + ":" + key
}
