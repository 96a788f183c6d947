package statemachine

import (
	"context"
	"fmt"
)

// Node 状态树中的节点
//
// 四种节点共用同一结构，通过 Kind 区分：复合状态可以拥有子节点和进入/退出动作，
// 起始、结束、历史为伪状态。父节点只是反向引用，节点被移除或替换后标记为已分离，
// 指向它的转换和历史记录随即失效。
//
// 节点不加锁，所有修改都应在驱动状态机的调度器协程上进行。
type Node struct {
	kind        Kind
	name        string
	parent      *Node
	detached    bool
	transitions []*Transition
	delegate    TransitionDelegate

	// 复合状态
	children  []*Node
	entry     ActionFunc
	entryName string
	exit      ActionFunc
	exitName  string

	// 历史状态
	saved *Node
}

// NewRoot 创建根状态
func NewRoot(name string) *Node {
	return newNode(KindComposite, name)
}

// NewState 创建尚未挂载的复合状态，可通过 AddChild 挂到父状态下
func NewState(name string) *Node {
	return newNode(KindComposite, name)
}

func newNode(kind Kind, name string) *Node {
	n := &Node{kind: kind, name: name}
	if kind == KindComposite {
		n.entryName = entryNamePrefix + name
		n.exitName = exitNamePrefix + name
	}
	return n
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) Name() string { return n.name }

// Parent 父状态，根状态或已分离的节点返回 nil
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) IsComposite() bool { return n.kind == KindComposite }
func (n *Node) IsStart() bool     { return n.kind == KindStart }
func (n *Node) IsEnd() bool       { return n.kind == KindEnd }
func (n *Node) IsHistory() bool   { return n.kind == KindHistory }

// Alive 节点未被移除或替换
func (n *Node) Alive() bool { return n != nil && !n.detached }

// Depth 根为 0，每次调用都沿父链重新计算
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root 沿父链找到根状态
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsAncestorOf 判断 n 是否为 other 的祖先 (不含自身)
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.kind, n.FullName())
}

/* ------------------------------ 子节点 ------------------------------ */

// AddState 创建并挂载复合子状态
func (n *Node) AddState(name string) (*Node, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	child := newNode(KindComposite, name)
	if err := n.AddChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// SetStartState 设置起始伪状态，已有的起始状态被替换并分离
func (n *Node) SetStartState(name string) (*Node, error) {
	if !n.IsComposite() {
		return nil, ErrNotComposite
	}
	start := newNode(KindStart, name)
	if err := n.AddChild(start); err != nil {
		return nil, err
	}
	return start, nil
}

// SetHistoryState 设置历史伪状态，已有的历史状态被替换并分离
func (n *Node) SetHistoryState() (*Node, error) {
	if !n.IsComposite() {
		return nil, ErrNotComposite
	}
	history := newNode(KindHistory, historyName)
	if err := n.AddChild(history); err != nil {
		return nil, err
	}
	return history, nil
}

// AddEndState 添加结束伪状态，可以有多个
func (n *Node) AddEndState(name string) (*Node, error) {
	if !n.IsComposite() {
		return nil, ErrNotComposite
	}
	end := newNode(KindEnd, name)
	if err := n.AddChild(end); err != nil {
		return nil, err
	}
	return end, nil
}

// AddChild 挂载子节点，子节点继承父状态的审计委托
func (n *Node) AddChild(child *Node) error {
	if !n.IsComposite() {
		return ErrNotComposite
	}
	if child == nil || child == n || child.parent != nil || child.detached || child.IsAncestorOf(n) {
		return ErrInvalidChild
	}

	switch child.kind {
	case KindStart:
		if old := n.StartState(); old != nil {
			n.detachChild(old)
		}
	case KindHistory:
		if old := n.HistoryState(); old != nil {
			n.detachChild(old)
		}
	}

	child.parent = n
	n.children = append(n.children, child)
	if n.delegate != nil {
		child.SetTransitionDelegate(n.delegate)
	}
	return nil
}

// RemoveChild 移除直接子节点，整棵子树随之失效
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrChildNotFound
	}
	n.detachChild(child)
	return nil
}

func (n *Node) detachChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent = nil
	child.Walk(func(d *Node) bool {
		d.detached = true
		return true
	})
}

// Child 第一个名称匹配的直接子节点
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *Node) childOf(kind Kind, name string) *Node {
	for _, c := range n.children {
		if c.kind == kind && c.name == name {
			return c
		}
	}
	return nil
}

func (n *Node) firstOf(kind Kind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// StartState 起始伪状态，没有时返回 nil
func (n *Node) StartState() *Node { return n.firstOf(KindStart) }

// HistoryState 历史伪状态，没有时返回 nil
func (n *Node) HistoryState() *Node { return n.firstOf(KindHistory) }

// EndStates 所有结束伪状态
func (n *Node) EndStates() []*Node {
	var ends []*Node
	for _, c := range n.children {
		if c.kind == KindEnd {
			ends = append(ends, c)
		}
	}
	return ends
}

/* ------------------------------ 历史 ------------------------------ */

// SavedState 历史状态记录的最近活动子状态，已失效时返回 nil
func (n *Node) SavedState() *Node {
	if n.saved == nil || n.saved.detached {
		return nil
	}
	return n.saved
}

// SetSavedState 手动设置历史状态记录的子状态，s 必须是同一复合状态的直接子状态，nil 清空记录
func (n *Node) SetSavedState(s *Node) error {
	if !n.IsHistory() {
		return ErrNotHistory
	}
	if s != nil && (s == n || s.parent == nil || s.parent != n.parent) {
		return ErrInvalidSavedState
	}
	n.saved = s
	return nil
}

// remember 在父状态的历史伪状态中记录自身
func (n *Node) remember() {
	if n.parent == nil {
		return
	}
	if h := n.parent.HistoryState(); h != nil {
		h.saved = n
	}
}

/* ------------------------------ 进入/退出动作 ------------------------------ */

func (n *Node) SetEntryAction(fn ActionFunc) { n.entry = fn }
func (n *Node) SetExitAction(fn ActionFunc)  { n.exit = fn }

func (n *Node) SetEntryActionName(name string) { n.entryName = name }
func (n *Node) SetExitActionName(name string)  { n.exitName = name }

func (n *Node) EntryActionName() string { return n.entryName }
func (n *Node) ExitActionName() string  { return n.exitName }

func (n *Node) HasEntryAction() bool { return n.entry != nil }
func (n *Node) HasExitAction() bool  { return n.exit != nil }

func (n *Node) doEntry(ctx context.Context, payload interface{}) error {
	if n.entry != nil {
		if err := n.entry(ctx, payload); err != nil {
			return err
		}
		if n.delegate != nil {
			n.delegate.OnEntryState(n)
		}
	}
	n.remember()
	return nil
}

func (n *Node) doExit(ctx context.Context, payload interface{}) error {
	if n.exit != nil {
		if err := n.exit(ctx, payload); err != nil {
			return err
		}
		if n.delegate != nil {
			n.delegate.OnExitState(n)
		}
	}
	n.remember()
	return nil
}

/* ------------------------------ 转换 ------------------------------ */

// AddTransition 添加从 n 出发的转换
//
// target 为 nil 时为内部转换，event 为空时为隐式转换。起始伪状态只能有一个隐式转换。
func (n *Node) AddTransition(target *Node, event string) (*Transition, error) {
	if event == "" && n.kind == KindStart {
		for _, t := range n.transitions {
			if t.event == "" {
				return nil, ErrDuplicateTransition
			}
		}
	}
	t := newTransition(n, target, event)
	t.delegate = n.delegate
	n.transitions = append(n.transitions, t)
	return t, nil
}

// RemoveTransition 删除转换，不存在时返回 false
func (n *Node) RemoveTransition(t *Transition) bool {
	for i, c := range n.transitions {
		if c == t {
			n.transitions = append(n.transitions[:i], n.transitions[i+1:]...)
			return true
		}
	}
	return false
}

// Transitions 按注册顺序返回转换列表的副本
func (n *Node) Transitions() []*Transition {
	out := make([]*Transition, len(n.transitions))
	copy(out, n.transitions)
	return out
}

// findTransition 第一个事件名相同且守卫通过的转换
func (n *Node) findTransition(ctx context.Context, evt Event) *Transition {
	for _, t := range n.transitions {
		if t.event == evt.Name && t.CheckGuard(ctx, evt.Payload) {
			return t
		}
	}
	return nil
}
