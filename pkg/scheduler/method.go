package scheduler

import (
	"context"
	"time"
	"weak"
)

// MethodFunc 绑定接收者的任务函数
type MethodFunc[T any] func(recv *T, ctx context.Context) error

// PushMethod 提交绑定接收者的任务，调度器只持有接收者的弱引用，
// 接收者被回收后任务静默跳过
func PushMethod[T any](s *Scheduler, recv *T, fn MethodFunc[T]) *Task {
	return s.Push(bindWeak(recv, fn))
}

// PushSingleShotMethod 延迟执行的 PushMethod
func PushSingleShotMethod[T any](s *Scheduler, delay time.Duration, recv *T, fn MethodFunc[T]) *Task {
	return s.PushSingleShot(delay, bindWeak(recv, fn))
}

// PushRepeatedMethod 周期执行的 PushMethod
func PushRepeatedMethod[T any](s *Scheduler, interval time.Duration, recv *T, fn MethodFunc[T]) *Task {
	return s.PushRepeated(interval, bindWeak(recv, fn))
}

func bindWeak[T any](recv *T, fn MethodFunc[T]) TaskFunc {
	wp := weak.Make(recv)
	return func(ctx context.Context) error {
		r := wp.Value()
		if r == nil {
			return nil
		}
		return fn(r, ctx)
	}
}
