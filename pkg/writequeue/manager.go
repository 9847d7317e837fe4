// Package writequeue serializes writes that share a key.
// Package writequeue 按 key 串行化写操作
//
// Each note id gets its own FIFO queue and worker, so two publishes of the same note never
// interleave their content update, revision snapshot and file mirror write, while writes
// to different notes run in parallel.
// 每个笔记 id 拥有独立的 FIFO 队列与 worker：同一笔记的发布不会交错，不同笔记并行执行。
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 等待写操作结果超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个 key 的队列容量，默认 64
	QueueCapacity int
	// WriteTimeout 单次写操作的最长等待时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 64,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// keyQueue is the queue of one key. mu guards closed so no op is sent after the worker stops.
type keyQueue struct {
	key      string
	ch       chan writeOp
	mu       sync.Mutex
	closed   bool
	lastUsed time.Time
	done     chan struct{}
}

// Manager 管理所有 key 的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	stopCleanup chan struct{}
	cleanupWg   sync.WaitGroup
}

// New creates a manager; nil cfg means DefaultConfig and nil logger means no logs.
// New 创建写队列管理器，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      c,
		logger:      logger,
		queues:      make(map[string]*keyQueue),
		stopCleanup: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn after every earlier write queued for key and returns its error.
// Execute 在同一 key 之前排队的写操作完成后执行 fn，并返回其错误
func (m *Manager) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	op := writeOp{ctx: ctx, fn: fn, result: result}

	if err := m.enqueue(key, op); err != nil {
		return err
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) enqueue(key string, op writeOp) error {
	for {
		q, err := m.getOrCreateQueue(key)
		if err != nil {
			return err
		}
		q.mu.Lock()
		if q.closed {
			// 恰好被回收，重新获取
			q.mu.Unlock()
			continue
		}
		q.lastUsed = time.Now()
		select {
		case q.ch <- op:
			q.mu.Unlock()
			return nil
		default:
			q.mu.Unlock()
			return ErrWriteQueueFull
		}
	}
}

func (m *Manager) getOrCreateQueue(key string) (*keyQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	if q, ok := m.queues[key]; ok {
		return q, nil
	}

	q := &keyQueue{
		key:      key,
		ch:       make(chan writeOp, m.config.QueueCapacity),
		lastUsed: time.Now(),
		done:     make(chan struct{}),
	}
	m.queues[key] = q
	go m.worker(q)

	m.logger.Debug("created write queue", zap.String("key", key))
	return q, nil
}

// worker 顺序执行队列中的写操作，通道关闭后退出
func (m *Manager) worker(q *keyQueue) {
	defer close(q.done)
	for op := range q.ch {
		m.executeOp(op)
	}
}

func (m *Manager) executeOp(op writeOp) {
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("write queue op panic", zap.Any("panic", r), zap.Stack("stack"))
				err = errors.New("write operation panicked")
			}
		}()
		err = op.fn(op.ctx)
	}()
	op.result <- err
}

// closeQueue 停止接收新操作，已排队的操作仍会被执行
func (q *keyQueue) closeQueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			m.doCleanup(time.Now())
		}
	}
}

// doCleanup 回收空闲且为空的队列
func (m *Manager) doCleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, q := range m.queues {
		q.mu.Lock()
		idle := now.Sub(q.lastUsed) > m.config.IdleTimeout && len(q.ch) == 0
		q.mu.Unlock()
		if !idle {
			continue
		}
		q.closeQueue()
		delete(m.queues, key)
		m.logger.Debug("cleaned up idle write queue", zap.String("key", key))
	}
}

// Shutdown stops accepting writes and waits until queued ones finish or ctx ends.
// Shutdown 停止接收写操作，等待已排队的操作完成或 ctx 结束
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*keyQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.queues = make(map[string]*keyQueue)
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down", zap.Int("queues", len(queues)))
	close(m.stopCleanup)

	for _, q := range queues {
		q.closeQueue()
	}

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			<-q.done
		}
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}

// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
