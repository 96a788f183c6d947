package scheduler

import (
	"context"
	"sync"
)

// Future RunAsync 返回的句柄
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done 循环退出后关闭
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait 阻塞到循环退出或 ctx 结束
func (f *Future) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 循环的返回值，循环未退出时为 nil
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

func (f *Future) complete(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}
