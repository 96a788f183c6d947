package scheduler

import (
	"context"
	"sync/atomic"
	"time"
)

// TaskFunc 任务函数类型
type TaskFunc func(context.Context) error

// Task 已提交任务的句柄
type Task struct {
	id       uint64
	fn       TaskFunc
	due      time.Time     // 到期时间
	interval time.Duration // 大于 0 表示周期任务
	seq      uint64        // 同一到期时间内的提交顺序
	index    int           // 堆中的位置，-1 表示不在队列中
	enabled  atomic.Bool
}

func newTask(id uint64, fn TaskFunc, due time.Time, interval time.Duration) *Task {
	t := &Task{id: id, fn: fn, due: due, interval: interval, index: -1}
	t.enabled.Store(true)
	return t
}

// ID 任务编号
func (t *Task) ID() uint64 { return t.id }

// Repeated 是否为周期任务
func (t *Task) Repeated() bool { return t.interval > 0 }

// Enabled 任务是否启用
func (t *Task) Enabled() bool { return t.enabled.Load() }

// SetEnabled 禁用的任务到期时直接丢弃，周期任务不再重新排队
func (t *Task) SetEnabled(enabled bool) { t.enabled.Store(enabled) }

// Cancel 等同于 SetEnabled(false)
func (t *Task) Cancel() { t.SetEnabled(false) }
