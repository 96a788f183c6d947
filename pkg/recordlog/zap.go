package recordlog

import (
	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// ZapSink 以结构化日志输出记录，失败的记录使用 Warn 级别
type ZapSink struct {
	log logger.Logger
	msg string
}

// NewZapSink 创建日志输出端，log 为 nil 时使用默认日志
func NewZapSink(log logger.Logger) *ZapSink {
	if log == nil {
		log = logger.Default()
	}
	return &ZapSink{log: log, msg: "transition record"}
}

func (s *ZapSink) Emit(channel uint64, rec *statemachine.Record) error {
	fields := []logger.Field{
		logger.String("machine", rec.Name),
		logger.String("id", rec.ID),
		logger.String("outcome", rec.Outcome),
		logger.Uint64("channel", channel),
		logger.Any("statemachine", rec),
	}
	if rec.Failed() {
		s.log.Warn(s.msg, append(fields, logger.String("failure", rec.Failure))...)
		return nil
	}
	s.log.Info(s.msg, fields...)
	return nil
}
