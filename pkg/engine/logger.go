package engine

import (
	"io"
	"os"

	"github.com/junbin-yang/go-statechart/pkg/config"
	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// NewLogger 按配置创建日志，File 为空时写标准错误
func NewLogger(lc *config.LoggerConfig) (logger.Logger, error) {
	level, err := logger.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	if lc.File != "" {
		rc := lc.LoggerRotate(lc.File)
		if lc.Rotate.Mode == config.RotateByTime {
			if out, err = logger.NewRotateByTime(rc); err != nil {
				return nil, err
			}
		} else {
			out = logger.NewRotateBySize(rc)
		}
	}
	return logger.New(out, level, logger.AddCaller()), nil
}
