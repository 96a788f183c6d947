// Package recordlog 提供状态机审计记录的输出端：日志、文件、内存，
// 以及按通道过滤、多路输出和从记录文件重建状态树。
package recordlog

import (
	"go.uber.org/multierr"

	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Sink 与 statemachine.Sink 相同，便于调用方只引用本包
type Sink = statemachine.Sink

// Filter 只转发通道与 mask 有交集的记录，mask 为 0 时全部转发
func Filter(mask uint64, next Sink) Sink {
	if mask == 0 {
		return next
	}
	return statemachine.SinkFunc(func(channel uint64, rec *statemachine.Record) error {
		if channel&mask == 0 {
			return nil
		}
		return next.Emit(channel, rec)
	})
}

// Tee 依次写入所有输出端，某个失败不影响其余的，错误合并返回
func Tee(sinks ...Sink) Sink {
	return statemachine.SinkFunc(func(channel uint64, rec *statemachine.Record) error {
		var err error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			err = multierr.Append(err, s.Emit(channel, rec))
		}
		return err
	})
}

// Channels 将通道编号转换为掩码
func Channels(chs ...int) uint64 {
	var mask uint64
	for _, ch := range chs {
		if ch >= 0 && ch <= statemachine.MaxLogChannel {
			mask |= 1 << uint(ch)
		}
	}
	return mask
}
