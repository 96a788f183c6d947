package statemachine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/scheduler"
)

const (
	// MaxLogChannel 通道位的最大值
	MaxLogChannel = 63

	tracerName = "github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Machine 将状态树绑定到调度器上的层次状态机
//
// RaiseEvent 可以在任意协程调用，事件被提交到调度器后依次解析；
// 状态树的修改、守卫与动作的执行都只发生在调度器协程上。
type Machine struct {
	sched  *scheduler.Scheduler
	log    logger.Logger
	tracer trace.Tracer
	sink   Sink
	name   string
	id     string

	mu       sync.Mutex
	root     *Node
	current  *Node
	delegate Delegate
	channel  uint8

	// 只在调度器协程上使用
	rec *recorder
}

// NewMachine 创建状态机
func NewMachine(sched *scheduler.Scheduler, opts ...Option) (*Machine, error) {
	if sched == nil {
		return nil, ErrNilScheduler
	}

	m := &Machine{
		sched:   sched,
		log:     logger.Default(),
		tracer:  noop.NewTracerProvider().Tracer(tracerName),
		name:    defaultMachineName,
		id:      uuid.NewString(),
		channel: MaxLogChannel,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sink == nil {
		m.sink = &logSink{log: m.log}
	}
	m.rec = newRecorder(sched.Clock().Now)
	return m, nil
}

func (m *Machine) Name() string { return m.name }

// ID 状态机实例编号，写入每条审计记录
func (m *Machine) ID() string { return m.id }

func (m *Machine) Scheduler() *scheduler.Scheduler { return m.sched }

// SetRootState 设置根状态，只能在启动前调用
func (m *Machine) SetRootState(root *Node) error {
	if root == nil || !root.IsComposite() {
		return ErrInvalidRoot
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return ErrAlreadyStarted
	}
	if m.root != nil && m.root != root {
		m.root.SetTransitionDelegate(nil)
	}
	root.SetTransitionDelegate(m.rec)
	m.root = root
	return nil
}

func (m *Machine) RootState() *Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// CurrentState 当前状态，未启动时返回 nil
func (m *Machine) CurrentState() *Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Machine) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

func (m *Machine) SetDelegate(d Delegate) {
	m.mu.Lock()
	m.delegate = d
	m.mu.Unlock()
}

// SetLogChannel 设置审计记录的通道位，超出范围时取边界值
func (m *Machine) SetLogChannel(ch int) {
	m.mu.Lock()
	m.channel = clampChannel(ch)
	m.mu.Unlock()
}

func (m *Machine) LogChannel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.channel)
}

func clampChannel(ch int) uint8 {
	if ch < 0 {
		return 0
	}
	if ch > MaxLogChannel {
		return MaxLogChannel
	}
	return uint8(ch)
}

// Start 当前状态置为根状态，并提交隐式事件展开根状态的起始/历史伪状态
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.root == nil {
		return ErrInvalidRoot
	}
	if m.current != nil {
		return ErrAlreadyStarted
	}
	if !m.sched.IsRunning() {
		return ErrSchedulerNotRunning
	}
	m.current = m.root
	m.enqueue(Implicit())
	m.log.Debug("state machine started", logger.String("name", m.name), logger.String("id", m.id))
	return nil
}

// Stop 清空当前状态，已提交的事件在执行时被忽略
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotStarted
	}
	m.current = nil
	m.log.Debug("state machine stopped", logger.String("name", m.name), logger.String("id", m.id))
	return nil
}

// RaiseEvent 提交事件后立即返回，结果通过 Delegate 异步通知
func (m *Machine) RaiseEvent(evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotStarted
	}
	m.enqueue(evt)
	return nil
}

func (m *Machine) enqueue(evt Event) {
	scheduler.PushMethod(m.sched, m, func(m *Machine, ctx context.Context) error {
		m.process(ctx, evt)
		return nil
	})
}

// process 在调度器协程上解析一个事件，错误只通过委托和审计记录报告
func (m *Machine) process(ctx context.Context, evt Event) {
	m.mu.Lock()
	cur := m.current
	channel := m.channel
	m.mu.Unlock()
	if cur == nil {
		return
	}

	ctx, span := m.tracer.Start(ctx, "statemachine.transition", trace.WithAttributes(
		attribute.String("statemachine.name", m.name),
		attribute.String("statemachine.id", m.id),
		attribute.String("statemachine.event", evt.Name),
		attribute.String("statemachine.from", cur.FullName()),
	))
	defer span.End()

	m.rec.reset(m.name, m.id, cur)
	next, outcome, err := m.resolve(ctx, cur, evt)

	m.mu.Lock()
	if err == nil && m.current == cur {
		m.current = next
	}
	d := m.delegate
	m.mu.Unlock()

	if err != nil {
		msg := err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		m.log.Warn("transition failed",
			logger.String("name", m.name), logger.String("event", evt.Name),
			logger.String("state", cur.FullName()), logger.Err(err))
		if d != nil {
			d.OnTransitionError(ctx, cur, msg)
		}
		m.flush(channel, outcome, msg)
		return
	}

	span.SetAttributes(
		attribute.String("statemachine.to", next.FullName()),
		attribute.String("statemachine.outcome", outcome.String()),
	)
	m.log.Debug("transition resolved",
		logger.String("name", m.name), logger.String("event", evt.Name),
		logger.String("state", next.FullName()), logger.String("outcome", outcome.String()))
	if d != nil {
		d.OnTransitionSucceed(ctx, next)
	}
	m.flush(channel, outcome, "")
}

func (m *Machine) resolve(ctx context.Context, cur *Node, evt Event) (next *Node, outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
			next = cur
		}
	}()
	return Resolve(ctx, cur, evt)
}

func (m *Machine) flush(channel uint8, outcome Outcome, failure string) {
	rec := m.rec.flush(outcome, failure)
	if err := m.sink.Emit(uint64(1)<<channel, rec); err != nil {
		m.log.Warn("emit transition record failed", logger.String("name", m.name), logger.Err(err))
	}
}

// logSink 默认输出端，以 statemachine 为键写入日志
type logSink struct {
	log logger.Logger
}

func (s *logSink) Emit(channel uint64, rec *Record) error {
	s.log.Info("transition record", logger.Uint64("channel", channel), logger.Any("statemachine", rec))
	return nil
}
