package task

import (
	"context"
	"time"

	"github.com/nexbyte/hackmd/internal/service"

	"go.uber.org/zap"
)

// RevisionPruneTask 清理笔记的旧版本，每个笔记保留最新的若干个
type RevisionPruneTask struct {
	revisions service.RevisionService
	logger    *zap.Logger
	keep      int
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func (t *RevisionPruneTask) Name() string {
	return "RevisionPrune"
}

func (t *RevisionPruneTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *RevisionPruneTask) IsStartupRun() bool {
	return false
}

// Run 删除超出保留数量且早于保留期的版本
func (t *RevisionPruneTask) Run(ctx context.Context) error {
	n, err := t.revisions.Prune(ctx, t.keep, t.now().Add(-t.retention))
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.Info("task log",
			zap.String("task", t.Name()),
			zap.Int64("deleted", n),
			zap.Int("keep", t.keep))
	}
	return nil
}

// NewRevisionPruneTask returns nil when no keep count is configured.
// NewRevisionPruneTask 未配置保留数量时返回 nil
func NewRevisionPruneTask(revisions service.RevisionService, logger *zap.Logger, keep int, retention, interval time.Duration) Task {
	if keep <= 0 || interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevisionPruneTask{
		revisions: revisions,
		logger:    logger,
		keep:      keep,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}
