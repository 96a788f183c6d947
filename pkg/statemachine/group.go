package statemachine

import (
	"fmt"
	"sort"
	"sync"
)

// Group 按名称管理多个状态机，通常共享同一个调度器
type Group struct {
	mu       sync.RWMutex
	machines map[string]*Machine
}

// NewGroup 创建状态机组
func NewGroup() *Group {
	return &Group{machines: make(map[string]*Machine)}
}

// AddMachine 以状态机名称注册，同名已存在时返回 ErrMachineExists
func (g *Group) AddMachine(m *Machine) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.machines[m.Name()]; ok {
		return fmt.Errorf("machine %q: %w", m.Name(), ErrMachineExists)
	}
	g.machines[m.Name()] = m
	return nil
}

// RemoveMachine 移除状态机，不会停止它
func (g *Group) RemoveMachine(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.machines, name)
}

// GetMachine 获取状态机
func (g *Group) GetMachine(name string) (*Machine, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.machines[name]
	return m, ok
}

// Names 按字母序返回已注册的名称
func (g *Group) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.machines))
	for name := range g.machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RaiseEvent 向指定状态机提交事件
func (g *Group) RaiseEvent(name string, evt Event) error {
	m, ok := g.GetMachine(name)
	if !ok {
		return fmt.Errorf("machine %q: %w", name, ErrMachineNotFound)
	}
	return m.RaiseEvent(evt)
}

// RaiseAll 向所有已启动的状态机提交同一事件，按名称顺序提交
func (g *Group) RaiseAll(evt Event) map[string]error {
	results := make(map[string]error)
	for _, name := range g.Names() {
		if m, ok := g.GetMachine(name); ok {
			results[name] = m.RaiseEvent(evt)
		}
	}
	return results
}

// States 各状态机当前状态的完整名称，未启动的为空字符串
func (g *Group) States() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	states := make(map[string]string, len(g.machines))
	for name, m := range g.machines {
		if cur := m.CurrentState(); cur != nil {
			states[name] = cur.FullName()
		} else {
			states[name] = ""
		}
	}
	return states
}

// StopAll 停止所有已启动的状态机
func (g *Group) StopAll() map[string]error {
	results := make(map[string]error)
	for _, name := range g.Names() {
		if m, ok := g.GetMachine(name); ok && m.IsStarted() {
			results[name] = m.Stop()
		}
	}
	return results
}

// Count 返回状态机数量
func (g *Group) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.machines)
}
