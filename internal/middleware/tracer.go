package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nexbyte/hackmd/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/uber/jaeger-client-go"
)

// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
const DefaultTraceIDHeader = "X-Trace-ID"

// TraceMiddlewareWithConfig 创建请求追踪中间件
// 功能：
// 1. 从请求头获取或生成唯一的 Trace ID，启用 jaeger 时使用 span 的 trace id
// 2. 为请求开启 span，注入到 request.Context 供 gorm 追踪插件使用
// 3. 在响应头中返回 Trace ID
func TraceMiddlewareWithConfig(enabled bool, header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		traceID := c.GetHeader(header)
		ctx := c.Request.Context()

		if enabled {
			tracer := opentracing.GlobalTracer()
			var span opentracing.Span
			parent, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header))
			if err == nil {
				span = tracer.StartSpan(c.Request.URL.Path, ext.RPCServerOption(parent))
			} else {
				span = tracer.StartSpan(c.Request.URL.Path)
			}
			defer span.Finish()
			ext.HTTPMethod.Set(span, c.Request.Method)
			ext.HTTPUrl.Set(span, c.Request.URL.String())

			if sc, ok := span.Context().(jaeger.SpanContext); ok && traceID == "" {
				traceID = sc.TraceID().String()
			}
			ctx = opentracing.ContextWithSpan(ctx, span)
			defer func() { ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status())) }()
		}

		if traceID == "" {
			traceID = generateTraceID()
		}

		c.Set(app.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(app.WithTraceID(ctx, traceID))
		c.Header(header, traceID)

		c.Next()
	}
}

// generateTraceID 生成唯一的 Trace ID
// 格式: {timestamp_nano}-{random_hex}
func generateTraceID() string {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}

	return fmt.Sprintf("%d-%s",
		time.Now().UnixNano(),
		hex.EncodeToString(randomBytes)[:8])
}
