package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexbyte/hackmd/internal/service"
	"github.com/nexbyte/hackmd/pkg/safe_close"
	"github.com/nexbyte/hackmd/pkg/statestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	startup  bool
	err      error
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(context.Context) error {
	t.runs.Add(1)
	return t.err
}

type panicTask struct{ countingTask }

func (t *panicTask) Run(context.Context) error {
	t.runs.Add(1)
	panic("boom")
}

func TestScheduler_RunsAndStops(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	loop := &countingTask{interval: time.Second}
	once := &countingTask{startup: true}
	failing := &panicTask{countingTask{startup: true}}
	s.AddTask(loop)
	s.AddTask(once)
	s.AddTask(failing)
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool {
		return loop.runs.Load() >= 1 && once.runs.Load() == 1 && failing.runs.Load() == 1
	}, 5*time.Second, 20*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), once.runs.Load())
}

func TestScheduler_Empty(t *testing.T) {
	sc := safe_close.NewSafeClose()
	assert.NoError(t, NewScheduler(nil, sc).Start())
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}

type pruneRecorder struct {
	service.RevisionService
	keep   int
	before time.Time
	err    error
}

func (p *pruneRecorder) Prune(_ context.Context, keep int, before time.Time) (int64, error) {
	p.keep, p.before = keep, before
	return 3, p.err
}

func TestRevisionPruneTask(t *testing.T) {
	assert.Nil(t, NewRevisionPruneTask(nil, nil, 0, time.Hour, time.Hour))
	assert.Nil(t, NewRevisionPruneTask(nil, nil, 10, time.Hour, 0))

	rec := &pruneRecorder{}
	task := NewRevisionPruneTask(rec, nil, 10, 24*time.Hour, time.Hour).(*RevisionPruneTask)
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	task.now = func() time.Time { return now }

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 10, rec.keep)
	assert.Equal(t, now.Add(-24*time.Hour), rec.before)

	rec.err = errors.New("db down")
	assert.Error(t, task.Run(context.Background()))
}

type resetCounter struct{ n int }

func (r *resetCounter) Reset() { r.n++ }

func TestStateSweepTask(t *testing.T) {
	ctx := context.Background()
	states := statestore.NewMemory()
	require.NoError(t, states.Put(ctx, "expired", "note", time.Millisecond))
	require.NoError(t, states.Put(ctx, "live", "note", time.Hour))
	time.Sleep(5 * time.Millisecond)

	limiter := &resetCounter{}
	task := NewStateSweepTask(states, limiter, nil, time.Minute)
	require.NotNil(t, task)
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, 1, limiter.n)

	assert.Equal(t, 1, states.Len())
	_, ok, err := states.Consume(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Nil(t, NewStateSweepTask(states, nil, nil, 0))
}
