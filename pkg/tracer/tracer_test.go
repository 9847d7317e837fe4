package tracer

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJaegerTracer_Disabled(t *testing.T) {
	tr, closer, err := NewJaegerTracer(Config{})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tr)
	assert.NoError(t, closer.Close())
}

func TestNewJaegerTracer_Enabled(t *testing.T) {
	tr, closer, err := NewJaegerTracer(Config{
		Enabled:     true,
		ServiceName: "hackmd-test",
		AgentHost:   "127.0.0.1:6831",
		SampleRate:  1,
	})
	require.NoError(t, err)
	defer closer.Close()

	span := tr.StartSpan("op")
	span.Finish()
	assert.Same(t, tr, opentracing.GlobalTracer())
}
