package statemachine

import "context"

// Outcome 一次解析的结果
type Outcome uint8

const (
	// OutcomeNoMatch 没有转换处理该事件，当前状态不变
	OutcomeNoMatch Outcome = iota
	// OutcomeInternal 执行了内部转换，当前状态不变
	OutcomeInternal
	// OutcomeResolved 执行了外部转换
	OutcomeResolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no-match"
	case OutcomeInternal:
		return "internal"
	case OutcomeResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Err OutcomeNoMatch 对应 ErrNoMatchingTransition，其余为 nil
func (o Outcome) Err() error {
	if o == OutcomeNoMatch {
		return ErrNoMatchingTransition
	}
	return nil
}

// Resolve 在 current 上处理事件并返回新的当前状态
//
// 命名事件从 current 开始沿父链查找第一个匹配的转换；隐式事件只在 current 上
// 展开伪状态 (历史、起始、结束)。守卫或动作返回错误时立即中止，已执行的退出、
// 进入动作不会回滚，此时返回的状态为 current。
func Resolve(ctx context.Context, current *Node, evt Event) (*Node, Outcome, error) {
	if current == nil {
		return nil, OutcomeNoMatch, nil
	}

	var (
		next    *Node
		outcome Outcome
		err     error
	)
	if evt.IsImplicit() {
		next, outcome, err = cascade(ctx, current, evt.Payload)
	} else {
		next, outcome, err = dispatch(ctx, current, evt)
	}
	if err != nil || next == nil {
		return current, outcome, err
	}
	return next, outcome, nil
}

// dispatch 查找并执行转换，返回 nil 表示当前状态不变
func dispatch(ctx context.Context, n *Node, evt Event) (*Node, Outcome, error) {
	for node := n; node != nil; node = node.parent {
		if t := node.findTransition(ctx, evt); t != nil {
			return fire(ctx, node, t, evt)
		}
		// 隐式事件不向上冒泡
		if evt.IsImplicit() {
			break
		}
	}

	if !evt.IsImplicit() && n.delegate != nil {
		n.delegate.OnBeginTransition(evt, nil, nil)
		n.delegate.OnEndTransition(nil)
	}
	return nil, OutcomeNoMatch, nil
}

func fire(ctx context.Context, source *Node, t *Transition, evt Event) (*Node, Outcome, error) {
	target := t.Target()
	d := source.delegate

	err := func() error {
		if d != nil {
			d.OnBeginTransition(evt, source, t)
			defer d.OnEndTransition(target)
		}
		if target == nil {
			return t.DoAction(ctx, evt.Payload)
		}
		return traverse(ctx, source, target, t, evt.Payload)
	}()

	if target == nil {
		return nil, OutcomeInternal, err
	}
	if err != nil {
		return nil, OutcomeResolved, err
	}

	next, _, err := cascade(ctx, target, evt.Payload)
	if err != nil {
		return nil, OutcomeResolved, err
	}
	if next == nil {
		next = target
	}
	return next, OutcomeResolved, nil
}

// traverse 退出 source 到公共祖先之间的状态，执行转换动作，再自上而下进入到 target
func traverse(ctx context.Context, source, target *Node, t *Transition, payload interface{}) error {
	lca := commonAncestor(source, target)

	for n := source; n != nil && n != lca; n = n.parent {
		if !n.IsComposite() {
			continue
		}
		if err := n.doExit(ctx, payload); err != nil {
			return err
		}
	}

	if err := t.DoAction(ctx, payload); err != nil {
		return err
	}

	var path []*Node
	for n := target; n != nil && n != lca; n = n.parent {
		path = append(path, n)
	}
	for i := len(path) - 1; i >= 0; i-- {
		if !path[i].IsComposite() {
			continue
		}
		if err := path[i].doEntry(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// commonAncestor 最近公共祖先；a 与 b 相同时返回其父状态，使自转换完整地退出再进入
func commonAncestor(a, b *Node) *Node {
	if a == b {
		return a.parent
	}

	da, db := a.Depth(), b.Depth()
	for ; da > db; da-- {
		a = a.parent
	}
	for ; db > da; db-- {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

// cascade 落到 n 之后展开伪状态，返回 nil 表示停在 n
func cascade(ctx context.Context, n *Node, payload interface{}) (*Node, Outcome, error) {
	switch n.kind {
	case KindHistory:
		saved := n.SavedState()
		if saved == nil {
			return n.parent, OutcomeResolved, nil
		}
		return restore(ctx, n, saved, payload)

	case KindComposite:
		if h := n.HistoryState(); h != nil {
			if saved := h.SavedState(); saved != nil {
				return restore(ctx, h, saved, payload)
			}
		}
		if s := n.StartState(); s != nil {
			notifyImplicit(n, s, payload)
			next, _, err := dispatch(ctx, s, Event{Payload: payload})
			if err != nil {
				return nil, OutcomeResolved, err
			}
			if next == nil {
				next = s
			}
			return next, OutcomeResolved, nil
		}
		return dispatch(ctx, n, Event{Payload: payload})

	case KindStart:
		return dispatch(ctx, n, Event{Payload: payload})

	case KindEnd:
		parent := n.parent
		if parent == nil {
			return nil, OutcomeNoMatch, nil
		}
		notifyImplicit(n, parent, payload)
		next, _, err := dispatch(ctx, parent, Event{Payload: payload})
		if err != nil {
			return nil, OutcomeResolved, err
		}
		if next == nil {
			next = parent
		}
		return next, OutcomeResolved, nil
	}
	return nil, OutcomeNoMatch, nil
}

// restore 从历史状态恢复到记录的子状态，并继续展开
func restore(ctx context.Context, history, saved *Node, payload interface{}) (*Node, Outcome, error) {
	notifyImplicit(history, saved, payload)
	next, _, err := cascade(ctx, saved, payload)
	if err != nil {
		return nil, OutcomeResolved, err
	}
	if next == nil {
		next = saved
	}
	return next, OutcomeResolved, nil
}

func notifyImplicit(from, to *Node, payload interface{}) {
	if d := from.delegate; d != nil {
		d.OnBeginTransition(Event{Payload: payload}, from, nil)
		d.OnEndTransition(to)
	}
}
