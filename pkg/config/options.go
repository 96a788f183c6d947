package config

import (
	"time"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// Option 加载器选项
type Option func(*Loader)

// WithAppName 设置应用名称（用于默认配置文件名）
func WithAppName(name string) Option {
	return func(l *Loader) {
		l.appName = name
	}
}

// WithSerializer 设置无后缀文件使用的格式
func WithSerializer(s Serializer) Option {
	return func(l *Loader) {
		l.serializer = s
	}
}

// WithForceFormat 强制指定配置格式（无视文件后缀）
func WithForceFormat(s Serializer) Option {
	return func(l *Loader) {
		l.forceFormat = s
	}
}

// WithDefaultPaths 设置默认查找路径，支持 {{.AppName}} 与 {{.ExecDir}}
func WithDefaultPaths(paths ...string) Option {
	return func(l *Loader) {
		l.defaultPaths = paths
	}
}

// WithConfigFormats 设置支持的配置格式列表
func WithConfigFormats(formats ...Serializer) Option {
	return func(l *Loader) {
		l.formats = formats
	}
}

// WithConfigWatch 启用配置文件监听（文件变化自动重载）
func WithConfigWatch(enable bool, interval time.Duration) Option {
	return func(l *Loader) {
		l.watch = enable
		if interval > 0 {
			l.debounce = interval
		}
	}
}

// WithLogger 设置日志实例
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
