package statestore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis stores states under prefix; expiry is left to redis.
// Redis 以 prefix 保存状态，过期由 redis 负责
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis 通过 redis URL 创建存储并检查连通性
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "statestore: parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "statestore: connect redis")
	}
	return NewRedisWithClient(client, prefix), nil
}

func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "hackmd:state:"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "statestore: set")
	}
	return nil
}

func (r *Redis) Consume(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.GetDel(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "statestore: getdel")
	}
	return v, true, nil
}

// Sweep is a no-op: redis expires keys itself.
func (r *Redis) Sweep(context.Context) (int, error) { return 0, nil }

func (r *Redis) Close() error { return r.client.Close() }
