package engine

import (
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Option 引擎配置选项
type Option func(*Engine)

// WithSignals 设置监听的退出信号
func WithSignals(signals ...os.Signal) Option {
	return func(e *Engine) {
		e.signals = signals
	}
}

// WithShutdownTimeout 设置退出超时时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.shutdownTimeout = timeout
	}
}

// WithLogger 使用已有的日志实例，不再按配置创建
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithSink 替换按配置组装的审计输出端
func WithSink(s statemachine.Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithClock 设置调度器时钟
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}
