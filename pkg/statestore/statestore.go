// Package statestore keeps short-lived one-time values such as OAuth state tokens.
// Package statestore 保存一次性短期数据，例如 OAuth state
package statestore

import (
	"context"
	"time"
)

// Store 一次性状态存储
type Store interface {
	// Put 保存 key，ttl 后过期
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Consume returns the value and deletes it; ok is false for unknown or expired keys.
	// Consume 读取并删除 key，未知或已过期时 ok 为 false
	Consume(ctx context.Context, key string) (value string, ok bool, err error)
	// Sweep 清理过期数据，返回清理数量
	Sweep(ctx context.Context) (int, error)
	Close() error
}
