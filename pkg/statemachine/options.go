package statemachine

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// Option 状态机配置选项
type Option func(*Machine)

// WithName 设置状态机名称，默认为 "State machine"
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// WithLogChannel 设置审计记录的通道位 (0-63)
func WithLogChannel(ch int) Option {
	return func(m *Machine) {
		m.channel = clampChannel(ch)
	}
}

// WithDelegate 设置宿主回调
func WithDelegate(d Delegate) Option {
	return func(m *Machine) {
		m.delegate = d
	}
}

// WithSink 设置审计记录输出端，默认写入日志
func WithSink(s Sink) Option {
	return func(m *Machine) {
		if s != nil {
			m.sink = s
		}
	}
}

// WithLogger 设置日志实例
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTracer 为每次解析创建 span，默认不采集
func WithTracer(t trace.Tracer) Option {
	return func(m *Machine) {
		if t != nil {
			m.tracer = t
		}
	}
}
