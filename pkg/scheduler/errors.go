package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning 当调度器已在运行时返回
	ErrAlreadyRunning = fmt.Errorf("scheduler: loop is already running")

	// ErrNilTask 当提交空任务时返回
	ErrNilTask = fmt.Errorf("scheduler: nil task")
)

// RuntimeError 不可恢复的任务错误，包括任务中的 panic
type RuntimeError struct {
	Err   error
	Panic interface{}
}

func (e *RuntimeError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("scheduler: task panic: %v", e.Panic)
	}
	return "scheduler: " + e.Err.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Fatal 将任务错误标记为不可恢复，调度器会转交 RuntimeErrorDelegate 或从 Run 返回
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Err: err}
}

// IsFatal 判断错误是否不可恢复
func IsFatal(err error) bool {
	var rt *RuntimeError
	return errors.As(err, &rt)
}
