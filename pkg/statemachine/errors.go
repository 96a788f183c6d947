package statemachine

import "fmt"

var (
	// ErrNotComposite 当在伪状态上执行只有复合状态支持的操作时返回
	ErrNotComposite = fmt.Errorf("state is not a composite")

	// ErrInvalidChild 当子节点为空、已有父节点或会形成环时返回
	ErrInvalidChild = fmt.Errorf("invalid child state")

	// ErrChildNotFound 当要移除的节点不是直接子节点时返回
	ErrChildNotFound = fmt.Errorf("child state not found")

	// ErrEmptyName 当状态名称为空时返回
	ErrEmptyName = fmt.Errorf("state name is empty")

	// ErrDuplicateTransition 当起始状态已有隐式转换时返回
	ErrDuplicateTransition = fmt.Errorf("duplicate transition")

	// ErrPathMismatch 当完整名称的根与现有根不一致时返回
	ErrPathMismatch = fmt.Errorf("state path does not match root")

	// ErrNoMatchingTransition 事件在当前状态及其祖先上都没有匹配的转换
	//
	// 这不是失败，Resolve 通过 OutcomeNoMatch 报告，Outcome.Err 可转换为该错误。
	ErrNoMatchingTransition = fmt.Errorf("no matching transition")

	// ErrInvalidRoot 当根状态为空或不是复合状态时返回
	ErrInvalidRoot = fmt.Errorf("invalid root state")

	// ErrAlreadyStarted 当状态机已启动时返回
	ErrAlreadyStarted = fmt.Errorf("state machine already started")

	// ErrNotStarted 当状态机未启动时返回
	ErrNotStarted = fmt.Errorf("state machine not started")

	// ErrSchedulerNotRunning 当调度器未运行时启动状态机返回
	ErrSchedulerNotRunning = fmt.Errorf("scheduler is not running")

	// ErrMachineNotFound 当状态机组中不存在该名称时返回
	ErrMachineNotFound = fmt.Errorf("state machine not found")

	// ErrNotHistory 当在非历史伪状态上设置历史记录时返回
	ErrNotHistory = fmt.Errorf("state is not a history pseudostate")

	// ErrInvalidSavedState 当历史记录的状态不是同一复合状态的直接子状态时返回
	ErrInvalidSavedState = fmt.Errorf("saved state is not a sibling of history")

	// ErrMachineExists 当状态机组中已有同名状态机时返回
	ErrMachineExists = fmt.Errorf("state machine already exists")

	// ErrNilScheduler 当未提供调度器时返回
	ErrNilScheduler = fmt.Errorf("scheduler is nil")
)
