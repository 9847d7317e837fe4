package task

import (
	"context"
	"time"

	"github.com/nexbyte/hackmd/pkg/statestore"

	"go.uber.org/zap"
)

// resetter 可清空的限流器
type resetter interface {
	Reset()
}

// StateSweepTask 清理过期的 OAuth state，并释放限流器中闲置的令牌桶
type StateSweepTask struct {
	states   statestore.Store
	limiter  resetter
	logger   *zap.Logger
	interval time.Duration
}

func (t *StateSweepTask) Name() string {
	return "StateSweep"
}

func (t *StateSweepTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *StateSweepTask) IsStartupRun() bool {
	return false
}

func (t *StateSweepTask) Run(ctx context.Context) error {
	if t.limiter != nil {
		t.limiter.Reset()
	}
	if t.states == nil {
		return nil
	}
	n, err := t.states.Sweep(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.Debug("task log", zap.String("task", t.Name()), zap.Int("swept", n))
	}
	return nil
}

// NewStateSweepTask 创建 state 清理任务
func NewStateSweepTask(states statestore.Store, limiter resetter, logger *zap.Logger, interval time.Duration) Task {
	if interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateSweepTask{states: states, limiter: limiter, logger: logger, interval: interval}
}
