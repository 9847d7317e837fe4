// Package safe_close coordinates graceful shutdown of long-running goroutines.
// Package safe_close 协调长生命周期协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached worker and waits for them.
// SafeClose 向所有挂载的协程广播关闭信号并等待其退出
type SafeClose struct {
	once     sync.Once
	closeCh  chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closeErr error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in a goroutine. fn must call done when it returns.
// Attach 在协程中运行 fn，fn 退出时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeCh)
}

// SendCloseSignal closes the signal channel once; the first non-nil err is kept.
// SendCloseSignal 只关闭一次信号通道，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if err != nil && s.closeErr == nil {
		s.closeErr = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.closeCh) })
}

// Closed reports whether the close signal was sent.
func (s *SafeClose) Closed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}

// WaitClosed blocks until every attached worker called done.
// WaitClosed 阻塞直到所有协程调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
