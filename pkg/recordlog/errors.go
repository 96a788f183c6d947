package recordlog

import "errors"

var (
	// ErrQueueFull 异步输出端队列已满且不阻塞时返回，记录被丢弃
	ErrQueueFull = errors.New("recordlog: queue is full")

	// ErrSinkClosed 输出端已关闭
	ErrSinkClosed = errors.New("recordlog: sink is closed")
)
