package statemachine

import "context"

// TransitionDelegate 接收一次解析过程中的每一步，用于生成审计记录
//
// 所有回调都在调度器协程上同步调用。未匹配到转换时 from 与 t 均为 nil。
type TransitionDelegate interface {
	OnBeginTransition(evt Event, from *Node, t *Transition)
	OnEndTransition(to *Node)
	OnEntryState(n *Node)
	OnExitState(n *Node)
	OnActionTransition(t *Transition)
}

// Delegate 宿主回调，每次解析结束后在调度器协程上调用
//
// ctx 是调度器任务的 ctx，回调中停止调度器时应传入它，scheduler.Stop 据此不再等待。
type Delegate interface {
	OnTransitionSucceed(ctx context.Context, current *Node)
	OnTransitionError(ctx context.Context, current *Node, message string)
}

// DelegateFuncs 函数形式的 Delegate，未设置的回调被忽略
type DelegateFuncs struct {
	Succeed func(ctx context.Context, current *Node)
	Failed  func(ctx context.Context, current *Node, message string)
}

func (d DelegateFuncs) OnTransitionSucceed(ctx context.Context, current *Node) {
	if d.Succeed != nil {
		d.Succeed(ctx, current)
	}
}

func (d DelegateFuncs) OnTransitionError(ctx context.Context, current *Node, message string) {
	if d.Failed != nil {
		d.Failed(ctx, current, message)
	}
}
