package statemachine

// Children 按插入顺序返回直接子节点的副本
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Walk 先序遍历 n 及其子树，fn 返回 false 时不再深入该节点的子树
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Find 按完整名称查找子树中的节点
func (n *Node) Find(fullName string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.FullName() == fullName {
			found = c
			return false
		}
		return true
	})
	return found
}

// SetTransitionDelegate 将审计委托设置到子树中的所有节点和转换上
func (n *Node) SetTransitionDelegate(d TransitionDelegate) {
	n.Walk(func(c *Node) bool {
		c.delegate = d
		for _, t := range c.transitions {
			t.delegate = d
		}
		return true
	})
}

// TransitionDelegate 当前设置的审计委托
func (n *Node) TransitionDelegate() TransitionDelegate { return n.delegate }
