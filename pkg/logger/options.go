package logger

import "go.uber.org/zap"

type Option = zap.Option

var (
	AddCaller     = zap.AddCaller
	AddCallerSkip = zap.AddCallerSkip
	AddStacktrace = zap.AddStacktrace
	WithCaller    = zap.WithCaller
)

// WithFields 为日志实例附加固定字段
func WithFields(fields ...Field) Option {
	return zap.Fields(fields...)
}
