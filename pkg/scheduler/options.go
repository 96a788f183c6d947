package scheduler

import (
	"github.com/jonboulle/clockwork"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// RuntimeErrorDelegate 接收不可恢复的任务错误
type RuntimeErrorDelegate interface {
	OnRuntimeError(message string)
}

// RuntimeErrorFunc 函数形式的 RuntimeErrorDelegate
type RuntimeErrorFunc func(message string)

func (f RuntimeErrorFunc) OnRuntimeError(message string) { f(message) }

// Option 调度器配置选项
type Option func(*Scheduler)

// WithName 设置调度器名称，用于日志
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.name = name
	}
}

// WithClock 设置时钟，测试中可传入 clockwork.NewFakeClock()
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger 设置日志实例
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRuntimeErrorDelegate 设置不可恢复错误的回调
func WithRuntimeErrorDelegate(d RuntimeErrorDelegate) Option {
	return func(s *Scheduler) {
		s.delegate = d
	}
}
