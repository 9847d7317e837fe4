// Package tracer 初始化 opentracing 全局 tracer（jaeger）
package tracer

import (
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Config 链路追踪配置
type Config struct {
	Enabled     bool    `yaml:"enabled"`
	Header      string  `yaml:"header" default:"X-Trace-ID"`
	ServiceName string  `yaml:"service-name" default:"hackmd"`
	AgentHost   string  `yaml:"agent-host" default:"127.0.0.1:6831"`
	SampleRate  float64 `yaml:"sample-rate" default:"1"`
}

// NewJaegerTracer builds a jaeger tracer and installs it as the opentracing global
// tracer. Disabled config installs a noop tracer.
// NewJaegerTracer 创建 jaeger tracer 并设置为全局 tracer，未启用时使用 noop
func NewJaegerTracer(c Config) (opentracing.Tracer, io.Closer, error) {
	if !c.Enabled {
		t := opentracing.NoopTracer{}
		opentracing.SetGlobalTracer(t)
		return t, io.NopCloser(nil), nil
	}

	cfg := &jaegercfg.Configuration{
		ServiceName: c.ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeProbabilistic,
			Param: c.SampleRate,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:            false,
			BufferFlushInterval: time.Second,
			LocalAgentHostPort:  c.AgentHost,
		},
	}
	t, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "tracer: new jaeger tracer")
	}
	opentracing.SetGlobalTracer(t)
	return t, closer, nil
}
