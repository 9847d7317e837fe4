package task

import (
	"context"
	"fmt"
	"time"

	"github.com/nexbyte/hackmd/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔，<=0 表示只在启动时执行
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler runs every task on a cron "@every" schedule. A run that is still going
// when the next tick arrives is skipped.
// Scheduler 任务调度器，上一次未结束时跳过本次执行
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Tasks 已添加的任务
func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start 启动所有任务，收到关闭信号后停止调度并等待执行中的任务
func (s *Scheduler) Start() error {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return nil
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	ctx, cancel := context.WithCancel(context.Background())
	for _, task := range s.tasks {
		task := task
		if task.IsStartupRun() {
			go s.run(ctx, task, "startupRun")
		}
		if task.LoopInterval() <= 0 {
			continue
		}
		spec := fmt.Sprintf("@every %s", task.LoopInterval())
		if _, err := s.cron.AddFunc(spec, func() { s.run(ctx, task, "loopRun") }); err != nil {
			cancel()
			return fmt.Errorf("schedule task %s: %w", task.Name(), err)
		}
	}
	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		cancel()
		<-s.cron.Stop().Done()
		s.logger.Info("tasks stopped", zap.Int("count", len(s.tasks)))
	})
	return nil
}

// run 执行一次任务，panic 不会影响其它任务
func (s *Scheduler) run(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
		return
	}
	s.logger.Debug("task finished",
		zap.String("name", task.Name()),
		zap.String("mode", mode),
		zap.Duration("elapsed", time.Since(start)))
}

// cronLogger 将 cron 的日志接口接到 zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
