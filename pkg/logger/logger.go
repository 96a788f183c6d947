package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// Level 日志级别
type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	PanicLevel
	FatalLevel
)

// String 返回级别名称
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case PanicLevel:
		return "panic"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// ParseLevel 解析配置中的级别字符串，忽略大小写
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "panic":
		return PanicLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level: %q", s)
}

// Logger 日志接口，默认实现为 ZapLogger
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Panic(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Panicf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	SetLevel(level Level)
	Sync() error
}

type holder struct{ l Logger }

var std atomic.Value

func init() {
	std.Store(holder{New(os.Stderr, InfoLevel, AddCaller(), AddCallerSkip(2))})
}

// Default 返回全局日志实例
func Default() Logger { return std.Load().(holder).l }

// ReplaceDefault 替换全局日志实例，nil 将被忽略
func ReplaceDefault(l Logger) {
	if l == nil {
		return
	}
	std.Store(holder{l})
}

func SetLevel(level Level) { Default().SetLevel(level) }

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
func Panic(msg string, fields ...Field) { Default().Panic(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().Fatal(msg, fields...) }

func Debugf(format string, v ...interface{}) { Default().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { Default().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { Default().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { Default().Errorf(format, v...) }
func Panicf(format string, v ...interface{}) { Default().Panicf(format, v...) }
func Fatalf(format string, v ...interface{}) { Default().Fatalf(format, v...) }

func Sync() error { return Default().Sync() }
