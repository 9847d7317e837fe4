// Package limiter provides token bucket rate limiting for gin routes.
// Package limiter 基于令牌桶的路由限流
package limiter

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 路由路径，例如 /new
	Key          string
	FillInterval time.Duration
	Capacity     int64
	Quantum      int64
}

// RouteIPLimiter keeps one bucket per route and client IP, created lazily from the
// route's rule. Requests on routes without a rule are not limited.
// RouteIPLimiter 按路由与客户端 IP 分桶，无规则的路由不限流
type RouteIPLimiter struct {
	mu      sync.Mutex
	rules   map[string]BucketRule
	buckets map[string]*ratelimit.Bucket
}

func NewRouteIPLimiter() *RouteIPLimiter {
	return &RouteIPLimiter{
		rules:   make(map[string]BucketRule),
		buckets: make(map[string]*ratelimit.Bucket),
	}
}

// Key 返回 "<route>|<ip>"，route 优先取注册的路由模板
func (l *RouteIPLimiter) Key(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return route + "|" + c.ClientIP()
}

func (l *RouteIPLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	route := key
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			route = key[:i]
			break
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b, true
	}
	rule, ok := l.rules[route]
	if !ok {
		return nil, false
	}
	b := ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
	l.buckets[key] = b
	return b, true
}

func (l *RouteIPLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rules {
		if r.Quantum <= 0 {
			r.Quantum = 1
		}
		l.rules[r.Key] = r
	}
	return l
}

// Reset 清空已创建的桶
func (l *RouteIPLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*ratelimit.Bucket)
}
