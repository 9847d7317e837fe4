package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteIPLimiter(t *testing.T) {
	l := NewRouteIPLimiter()
	l.AddBuckets(BucketRule{Key: "/new", FillInterval: time.Hour, Capacity: 2})

	_, ok := l.GetBucket("/other|1.1.1.1")
	assert.False(t, ok)

	b, ok := l.GetBucket("/new|1.1.1.1")
	require.True(t, ok)
	assert.Equal(t, int64(1), b.TakeAvailable(1))
	assert.Equal(t, int64(1), b.TakeAvailable(1))
	assert.Equal(t, int64(0), b.TakeAvailable(1))

	same, _ := l.GetBucket("/new|1.1.1.1")
	assert.Same(t, b, same)

	other, ok := l.GetBucket("/new|2.2.2.2")
	require.True(t, ok)
	assert.Equal(t, int64(1), other.TakeAvailable(1))

	l.Reset()
	fresh, _ := l.GetBucket("/new|1.1.1.1")
	assert.Equal(t, int64(1), fresh.TakeAvailable(1))
}
