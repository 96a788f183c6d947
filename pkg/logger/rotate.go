package logger

import (
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename string

	// 按大小轮转
	MaxSize    int  // 单个文件大小上限，单位 MB
	MaxBackups int  // 保留旧文件个数
	Compress   bool // 是否 gzip 压缩旧文件

	// 按时间轮转
	RotationTime time.Duration

	MaxAge    int // 旧文件保留天数
	LocalTime bool
}

// NewRotateBySize 按文件大小轮转
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		LocalTime:  cfg.LocalTime,
		Compress:   cfg.Compress,
	}
}

// NewProductionRotateBySize 生产环境默认轮转: 100MB, 保留 30 天与 100 个备份
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 100,
		MaxAge:     30,
		LocalTime:  true,
		Compress:   true,
	})
}

// NewRotateByTime 按时间轮转，文件名追加时间后缀并维护软链接
func NewRotateByTime(cfg *RotateConfig) (io.Writer, error) {
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithMaxAge(time.Duration(maxAge) * 24 * time.Hour),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithLinkName(cfg.Filename),
	}
	if !cfg.LocalTime {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.UTC))
	}

	rl, err := rotatelogs.New(cfg.Filename+".%Y%m%d%H", opts...)
	if err != nil {
		return nil, err
	}
	return rl, nil
}
