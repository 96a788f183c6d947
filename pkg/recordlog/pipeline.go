package recordlog

import (
	"io"

	"go.uber.org/multierr"

	"github.com/junbin-yang/go-statechart/pkg/config"
	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Pipeline 按配置组装的输出端，Close 关闭其中打开的文件
type Pipeline struct {
	sink    Sink
	closers []io.Closer
}

// New 组装输出端：总是写日志，配置了 record.file 时同时写文件，
// 两者都只接收 record.channels 选中的通道。
func New(cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	p := &Pipeline{}
	sinks := []Sink{NewZapSink(log)}

	if cfg.Record.File != "" {
		fs, err := OpenFileSink(cfg.Record.File, cfg.Record.Format, &cfg.Logger)
		if err != nil {
			return nil, err
		}
		if cfg.Record.QueueSize > 0 {
			async := NewAsyncSink(fs, cfg.Record.QueueSize, WithAsyncLogger(log))
			sinks = append(sinks, async)
			p.closers = append(p.closers, async)
		} else {
			sinks = append(sinks, fs)
			p.closers = append(p.closers, fs)
		}
	}

	p.sink = Filter(cfg.Record.Channels, Tee(sinks...))
	return p, nil
}

func (p *Pipeline) Emit(channel uint64, rec *statemachine.Record) error {
	return p.sink.Emit(channel, rec)
}

func (p *Pipeline) Close() error {
	var err error
	for _, c := range p.closers {
		err = multierr.Append(err, c.Close())
	}
	p.closers = nil
	return err
}
