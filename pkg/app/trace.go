package app

import (
	"context"

	"github.com/gin-gonic/gin"
)

type traceIDKeyType struct{}

// TraceIDKey is the gin context key of the request trace id.
// TraceIDKey gin.Context 中存储 Trace ID 的键
const TraceIDKey = "trace_id"

// WithTraceID 将 Trace ID 注入 context.Context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKeyType{}, traceID)
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKeyType{}).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(TraceIDKey)
}
