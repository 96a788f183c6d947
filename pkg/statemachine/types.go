package statemachine

import "context"

// Event 触发状态转换的事件，Name 为空表示隐式 (完成) 事件
type Event struct {
	Name    string
	Payload interface{}
}

// NewEvent 创建带负载的事件
func NewEvent(name string, payload interface{}) Event {
	return Event{Name: name, Payload: payload}
}

// Implicit 返回隐式事件
func Implicit() Event { return Event{} }

// IsImplicit 是否为隐式事件
func (e Event) IsImplicit() bool { return e.Name == "" }

// GuardFunc 检查事件负载是否允许转换
type GuardFunc func(ctx context.Context, payload interface{}) bool

// ActionFunc 状态进入、退出以及转换时执行的动作
type ActionFunc func(ctx context.Context, payload interface{}) error

// Kind 节点类型
type Kind uint8

const (
	KindComposite Kind = iota
	KindStart
	KindEnd
	KindHistory
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindHistory:
		return "history"
	default:
		return "unknown"
	}
}

const (
	// Separator 完整名称的路径分隔符
	Separator = "/"

	startSuffix = "(S)"
	endSuffix   = "(E)"
	historyName = "(H)"

	defaultMachineName = "State machine"
	defaultGuardName   = "checkGuard"
	defaultActionName  = "doActionTransition"
	entryNamePrefix    = "doEntry"
	exitNamePrefix     = "doExit"
)
