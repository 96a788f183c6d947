package statemachine

import (
	"fmt"
	"strings"
)

// FullName 以 "/" 连接的完整名称，例如 /root/S1/S1_start(S)
func (n *Node) FullName() string {
	return n.FullNameSep(Separator)
}

// FullNameSep 使用指定分隔符的完整名称
func (n *Node) FullNameSep(sep string) string {
	var segs []string
	for c := n; c != nil; c = c.parent {
		segs = append(segs, c.segment())
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteString(sep)
		b.WriteString(segs[i])
	}
	return b.String()
}

func (n *Node) segment() string {
	switch n.kind {
	case KindStart:
		return n.name + startSuffix
	case KindEnd:
		return n.name + endSuffix
	default:
		return n.name
	}
}

// ResolvePath 按完整名称定位节点，缺失的节点按名称后缀创建
//
// 第一段为状态机名称 (以分隔符开头时为空)，第二段为根状态名称；root 为 nil 时创建根状态。
// 返回定位到的节点以及 (可能新建的) 根状态。
func ResolvePath(root *Node, fullName string) (*Node, *Node, error) {
	segs := strings.Split(fullName, Separator)
	if len(segs) < 2 || segs[1] == "" {
		return nil, root, fmt.Errorf("%w: %q", ErrPathMismatch, fullName)
	}

	if root == nil {
		root = NewRoot(segs[1])
	} else if root.name != segs[1] {
		return nil, root, fmt.Errorf("%w: %q is not under %q", ErrPathMismatch, fullName, root.name)
	}

	cur := root
	for _, seg := range segs[2:] {
		if seg == "" {
			continue
		}
		if !cur.IsComposite() {
			return nil, root, fmt.Errorf("%w: %s", ErrNotComposite, cur.FullName())
		}

		var (
			next *Node
			err  error
		)
		switch {
		case seg == historyName:
			if next = cur.HistoryState(); next == nil {
				next, err = cur.SetHistoryState()
			}
		case strings.HasSuffix(seg, startSuffix):
			name := strings.TrimSuffix(seg, startSuffix)
			if next = cur.childOf(KindStart, name); next == nil {
				next, err = cur.SetStartState(name)
			}
		case strings.HasSuffix(seg, endSuffix):
			name := strings.TrimSuffix(seg, endSuffix)
			if next = cur.childOf(KindEnd, name); next == nil {
				next, err = cur.AddEndState(name)
			}
		default:
			if next = cur.childOf(KindComposite, seg); next == nil {
				next, err = cur.AddState(seg)
			}
		}
		if err != nil {
			return nil, root, err
		}
		cur = next
	}
	return cur, root, nil
}
