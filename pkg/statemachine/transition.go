package statemachine

import "context"

// Transition 从源状态出发、由事件触发的转换
//
// 目标为空或已失效时为内部转换：只执行动作，不退出也不进入任何状态。
type Transition struct {
	source     *Node
	target     *Node
	event      string
	name       string
	guard      GuardFunc
	guardName  string
	action     ActionFunc
	actionName string
	delegate   TransitionDelegate
}

func newTransition(source, target *Node, event string) *Transition {
	return &Transition{
		source:     source,
		target:     target,
		event:      event,
		guardName:  defaultGuardName,
		actionName: defaultActionName,
	}
}

// Event 触发事件名，空字符串表示隐式转换
func (t *Transition) Event() string { return t.event }

// Source 源状态
func (t *Transition) Source() *Node { return t.source }

// Target 目标状态，未设置或已失效时返回 nil
func (t *Transition) Target() *Node {
	if t.target == nil || t.target.detached {
		return nil
	}
	return t.target
}

// IsInternal 目标未设置或已失效
func (t *Transition) IsInternal() bool { return t.Target() == nil }

func (t *Transition) Name() string        { return t.name }
func (t *Transition) SetName(name string) { t.name = name }

func (t *Transition) SetGuard(fn GuardFunc)     { t.guard = fn }
func (t *Transition) SetGuardName(name string)  { t.guardName = name }
func (t *Transition) GuardName() string         { return t.guardName }
func (t *Transition) HasGuard() bool            { return t.guard != nil }
func (t *Transition) SetAction(fn ActionFunc)   { t.action = fn }
func (t *Transition) SetActionName(name string) { t.actionName = name }
func (t *Transition) ActionName() string        { return t.actionName }
func (t *Transition) HasAction() bool           { return t.action != nil }

// CheckGuard 未设置守卫时总是通过
func (t *Transition) CheckGuard(ctx context.Context, payload interface{}) bool {
	if t.guard == nil {
		return true
	}
	return t.guard(ctx, payload)
}

// DoAction 执行转换动作，成功后向审计委托报告动作名
func (t *Transition) DoAction(ctx context.Context, payload interface{}) error {
	if t.action == nil {
		return nil
	}
	if err := t.action(ctx, payload); err != nil {
		return err
	}
	if t.delegate != nil {
		t.delegate.OnActionTransition(t)
	}
	return nil
}
