// Package workerpool bounds how many expensive jobs run at once.
// Package workerpool 限制高开销任务的并发数量
//
// The PDF export path submits every render here, so a burst of export requests queues
// up behind a fixed number of headless browser sessions instead of spawning one each.
// PDF 导出的每次渲染都通过这里提交，突发请求会排队等待固定数量的浏览器会话。
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed 池已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config 池配置
type Config struct {
	// MaxWorkers 最大并发数，默认 4
	MaxWorkers int
	// QueueSize 等待队列长度，默认 32
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{MaxWorkers: 4, QueueSize: 32}
}

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 固定 worker 数量的任务池
type Pool struct {
	config Config
	logger *zap.Logger

	jobs    chan job
	wg      sync.WaitGroup
	active  atomic.Int64
	mu      sync.RWMutex
	closed  bool
	stopped chan struct{}
}

// New starts a pool; nil cfg means DefaultConfig.
// New 启动任务池，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config:  c,
		logger:  logger,
		jobs:    make(chan job, c.QueueSize),
		stopped: make(chan struct{}),
	}
	for i := 0; i < c.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	p.active.Add(1)
	defer p.active.Add(-1)

	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("worker pool job panic", zap.Any("panic", r), zap.Stack("stack"))
				err = errors.New("worker pool job panicked")
			}
		}()
		err = j.fn(j.ctx)
	}()
	j.done <- err
}

// Submit queues fn and waits for its result. A full queue fails fast with ErrWorkerPoolFull.
// Submit 提交任务并等待结果，队列已满时立即返回 ErrWorkerPoolFull
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- j:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		return ErrWorkerPoolFull
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveCount 返回正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// QueuedCount 返回排队中的任务数
func (p *Pool) QueuedCount() int {
	return len(p.jobs)
}

// Shutdown stops accepting jobs and waits for queued ones or ctx.
// Shutdown 停止接收任务，等待已排队任务完成或 ctx 结束
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	go func() {
		p.wg.Wait()
		close(p.stopped)
	}()

	select {
	case <-p.stopped:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int64("active", p.active.Load()))
		return ctx.Err()
	}
}
