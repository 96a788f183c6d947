package recordlog

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/junbin-yang/go-statechart/pkg/config"
	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// FileSink 将记录逐条写入 w
//
// json 格式每条一行；yaml 格式每条为一个以 "---" 开头的文档。
type FileSink struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

// NewFileSink 创建输出端，format 为空时使用 json
func NewFileSink(w io.Writer, format string) (*FileSink, error) {
	switch format {
	case "":
		format = config.FormatJSON
	case config.FormatJSON, config.FormatYAML:
	default:
		return nil, fmt.Errorf("recordlog: unknown format %q", format)
	}
	return &FileSink{w: w, format: format}, nil
}

// OpenFileSink 按日志轮转配置打开记录文件
func OpenFileSink(file string, format string, rotate *config.LoggerConfig) (*FileSink, error) {
	var (
		w   io.Writer
		err error
	)
	rc := rotate.LoggerRotate(file)
	if rotate.Rotate.Mode == config.RotateByTime {
		if w, err = logger.NewRotateByTime(rc); err != nil {
			return nil, err
		}
	} else {
		w = logger.NewRotateBySize(rc)
	}
	return NewFileSink(w, format)
}

func (s *FileSink) Format() string { return s.format }

func (s *FileSink) Emit(_ uint64, rec *statemachine.Record) error {
	var (
		data []byte
		err  error
	)
	if s.format == config.FormatYAML {
		data, err = yaml.Marshal(rec)
		data = append([]byte("---\n"), data...)
	} else {
		data, err = json.Marshal(rec)
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("recordlog: encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(data)
	return err
}

// Close 关闭底层的轮转文件
func (s *FileSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
