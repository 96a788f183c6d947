package statemachine

import "time"

// ActionRecord 一次转换中执行的动作
type ActionRecord struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Name      string    `json:"name" yaml:"name"`
}

// TransitionRecord 一次解析中的单步转换，伪状态展开也各占一条
type TransitionRecord struct {
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Event     string         `json:"evtName,omitempty" yaml:"evtName,omitempty"`
	Guard     string         `json:"guardName,omitempty" yaml:"guardName,omitempty"`
	From      string         `json:"fromState,omitempty" yaml:"fromState,omitempty"`
	To        string         `json:"toState,omitempty" yaml:"toState,omitempty"`
	Actions   []ActionRecord `json:"actionRecords,omitempty" yaml:"actionRecords,omitempty"`
}

// Record 一次事件处理的审计记录，无论成功失败都会输出
type Record struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	ID          string             `json:"id" yaml:"id"`
	Failure     string             `json:"failure,omitempty" yaml:"failure,omitempty"`
	Current     string             `json:"currentState" yaml:"currentState"`
	Outcome     string             `json:"outcome" yaml:"outcome"`
	Transitions []TransitionRecord `json:"transitionRecords" yaml:"transitionRecords"`
}

// Failed 记录是否对应失败的转换
func (r *Record) Failed() bool { return r.Failure != "" }

// Sink 审计记录的输出端，channel 为宿主选择的位掩码
type Sink interface {
	Emit(channel uint64, rec *Record) error
}

// SinkFunc 函数形式的 Sink
type SinkFunc func(channel uint64, rec *Record) error

func (f SinkFunc) Emit(channel uint64, rec *Record) error { return f(channel, rec) }

// recorder 作为 TransitionDelegate 挂在状态树上，收集一次解析的所有步骤
type recorder struct {
	now func() time.Time
	rec Record
}

var _ TransitionDelegate = (*recorder)(nil)

func newRecorder(now func() time.Time) *recorder {
	return &recorder{now: now}
}

func (r *recorder) reset(name, id string, current *Node) {
	r.rec = Record{Name: name, ID: id}
	if current != nil {
		r.rec.Current = current.FullName()
	}
}

func (r *recorder) last() *TransitionRecord {
	if len(r.rec.Transitions) == 0 {
		r.rec.Transitions = append(r.rec.Transitions, TransitionRecord{Timestamp: r.now()})
	}
	return &r.rec.Transitions[len(r.rec.Transitions)-1]
}

func (r *recorder) addAction(name string) {
	tr := r.last()
	tr.Actions = append(tr.Actions, ActionRecord{Timestamp: r.now(), Name: name})
}

func (r *recorder) OnBeginTransition(evt Event, from *Node, t *Transition) {
	tr := TransitionRecord{Timestamp: r.now(), Event: evt.Name}
	if from != nil {
		tr.From = from.FullName()
	}
	if t != nil {
		tr.Name = t.Name()
		if t.HasGuard() {
			tr.Guard = t.GuardName()
		}
	}
	r.rec.Transitions = append(r.rec.Transitions, tr)
}

func (r *recorder) OnEndTransition(to *Node) {
	if to != nil {
		r.last().To = to.FullName()
	}
}

func (r *recorder) OnEntryState(n *Node)             { r.addAction(n.EntryActionName()) }
func (r *recorder) OnExitState(n *Node)              { r.addAction(n.ExitActionName()) }
func (r *recorder) OnActionTransition(t *Transition) { r.addAction(t.ActionName()) }

// flush 取出当前记录并清空
func (r *recorder) flush(outcome Outcome, failure string) *Record {
	rec := r.rec
	rec.Outcome = outcome.String()
	rec.Failure = failure
	if rec.Transitions == nil {
		rec.Transitions = []TransitionRecord{}
	}
	r.rec = Record{}
	return &rec
}
