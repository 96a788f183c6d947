package statemachine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// calls 记录动作执行顺序
type calls struct {
	list []string
}

func (c *calls) action(name string) ActionFunc {
	return func(context.Context, interface{}) error {
		c.list = append(c.list, name)
		return nil
	}
}

func (c *calls) failing(name string, msg string) ActionFunc {
	return func(context.Context, interface{}) error {
		c.list = append(c.list, name)
		return errors.New(msg)
	}
}

func (c *calls) reset() []string {
	out := c.list
	c.list = nil
	return out
}

func lessThan(limit int) GuardFunc {
	return func(_ context.Context, payload interface{}) bool {
		v, ok := payload.(int)
		if !ok {
			return true
		}
		return v < limit
	}
}

// chart 测试用状态图
//
//	root
//	├── root_start(S) ──""──▶ S1
//	├── S1  [evt5 <5 ▶ S2] [evt6 ▶ S1] [evt7 内部] [evt9 ▶ S2 动作失败]
//	│   ├── (H)
//	│   ├── S1_start(S) ──evt1──▶ S1_1
//	│   ├── S1_1 ──evt2──▶ S1_2
//	│   ├── S1_2 ──evt4──▶ S1_end
//	│   └── S1_end(E)
//	└── S2
//	    ├── S2_start(S) ──""──▶ S2_1
//	    ├── S2_1 ──evt3──▶ S2_2
//	    └── S2_2 ──evt8──▶ S1
type chart struct {
	calls *calls

	root, rootStart        *Node
	s1, s1Hist, s1Start    *Node
	s11, s12, s1End        *Node
	s2, s2Start, s21, s22  *Node
	evt5, evt6, evt7, evt9 *Transition
}

func mustState(t *testing.T, parent *Node, name string) *Node {
	t.Helper()
	n, err := parent.AddState(name)
	if err != nil {
		t.Fatalf("创建状态 %s 失败: %v", name, err)
	}
	return n
}

func mustTransition(t *testing.T, from, to *Node, event string) *Transition {
	t.Helper()
	tr, err := from.AddTransition(to, event)
	if err != nil {
		t.Fatalf("创建转换 %s 失败: %v", event, err)
	}
	return tr
}

func newChart(t *testing.T) *chart {
	t.Helper()
	c := &chart{calls: &calls{}}

	c.root = NewRoot("root")
	var err error
	if c.rootStart, err = c.root.SetStartState("root_start"); err != nil {
		t.Fatal(err)
	}

	c.s1 = mustState(t, c.root, "S1")
	if c.s1Hist, err = c.s1.SetHistoryState(); err != nil {
		t.Fatal(err)
	}
	if c.s1Start, err = c.s1.SetStartState("S1_start"); err != nil {
		t.Fatal(err)
	}
	c.s11 = mustState(t, c.s1, "S1_1")
	c.s12 = mustState(t, c.s1, "S1_2")
	if c.s1End, err = c.s1.AddEndState("S1_end"); err != nil {
		t.Fatal(err)
	}

	c.s2 = mustState(t, c.root, "S2")
	if c.s2Start, err = c.s2.SetStartState("S2_start"); err != nil {
		t.Fatal(err)
	}
	c.s21 = mustState(t, c.s2, "S2_1")
	c.s22 = mustState(t, c.s2, "S2_2")

	for _, n := range []*Node{c.root, c.s1, c.s11, c.s12, c.s2, c.s21, c.s22} {
		n.SetEntryAction(c.calls.action("entry:" + n.Name()))
		n.SetExitAction(c.calls.action("exit:" + n.Name()))
	}

	mustTransition(t, c.rootStart, c.s1, "")
	mustTransition(t, c.s1Start, c.s11, "evt1")
	mustTransition(t, c.s11, c.s12, "evt2")
	mustTransition(t, c.s12, c.s1End, "evt4")
	mustTransition(t, c.s2Start, c.s21, "")
	mustTransition(t, c.s21, c.s22, "evt3")
	mustTransition(t, c.s22, c.s1, "evt8")

	c.evt5 = mustTransition(t, c.s1, c.s2, "evt5")
	c.evt5.SetGuard(lessThan(5))
	c.evt5.SetAction(c.calls.action("action:evt5"))

	c.evt6 = mustTransition(t, c.s1, c.s1, "evt6")
	c.evt6.SetAction(c.calls.action("action:evt6"))

	c.evt7 = mustTransition(t, c.s1, nil, "evt7")
	c.evt7.SetAction(c.calls.action("action:evt7"))

	c.evt9 = mustTransition(t, c.s1, c.s2, "evt9")
	c.evt9.SetAction(c.calls.failing("action:evt9", "evt9 action failed"))

	return c
}

// step 同步解析一个事件
func step(t *testing.T, cur *Node, name string, payload interface{}) (*Node, Outcome) {
	t.Helper()
	next, outcome, err := Resolve(context.Background(), cur, NewEvent(name, payload))
	if err != nil {
		t.Fatalf("解析事件 %q 失败: %v", name, err)
	}
	return next, outcome
}

func expectState(t *testing.T, got, want *Node) {
	t.Helper()
	if got != want {
		t.Fatalf("状态错误: got %v, want %v", describe(got), describe(want))
	}
}

func describe(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprint(n.FullName())
}
