package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// Scheduler 单协程任务循环
//
// 任意协程都可以提交任务，所有任务只在 Run 所在的协程上按到期时间依次执行。
// 到期时间相同的任务保持提交顺序。
type Scheduler struct {
	name     string
	clock    clockwork.Clock
	log      logger.Logger
	delegate RuntimeErrorDelegate

	mu      sync.Mutex
	queue   taskQueue
	nextID  uint64
	seq     uint64
	last    time.Time
	running bool
	ending  bool
	done    chan struct{}

	wake chan struct{}
}

type workerKey struct{}

// New 创建调度器
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		name:  "scheduler",
		clock: clockwork.NewRealClock(),
		log:   logger.Default(),
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name 调度器名称
func (s *Scheduler) Name() string { return s.name }

// Clock 调度器使用的时钟
func (s *Scheduler) Clock() clockwork.Clock { return s.clock }

// Push 提交立即执行的任务
func (s *Scheduler) Push(fn TaskFunc) *Task {
	return s.schedule(fn, false, 0, 0)
}

// PushImmediate 提交任务并排在所有已排队任务之前
func (s *Scheduler) PushImmediate(fn TaskFunc) *Task {
	return s.schedule(fn, true, 0, 0)
}

// PushSingleShot 提交延迟任务，不早于 now+delay 执行一次
func (s *Scheduler) PushSingleShot(delay time.Duration, fn TaskFunc) *Task {
	return s.schedule(fn, false, delay, 0)
}

// PushRepeated 提交周期任务，首次在 now+interval 执行
//
// 下一次到期时间由上一次的到期时间累加得到，而不是执行完成的时刻。
func (s *Scheduler) PushRepeated(interval time.Duration, fn TaskFunc) *Task {
	if interval <= 0 {
		return s.PushSingleShot(0, fn)
	}
	return s.schedule(fn, false, interval, interval)
}

// schedule 在锁内取当前时间，到期时间与入队顺序一致
func (s *Scheduler) schedule(fn TaskFunc, immediate bool, delay, interval time.Duration) *Task {
	if fn == nil {
		fn = func(context.Context) error { return ErrNilTask }
	}

	s.mu.Lock()
	var due time.Time
	if !immediate {
		due = s.clock.Now().Add(delay)
	}
	s.nextID++
	t := newTask(s.nextID, fn, due, interval)
	s.enqueueLocked(t)
	s.mu.Unlock()

	s.notify()
	return t
}

func (s *Scheduler) enqueueLocked(t *Task) {
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Len 返回排队中的任务数量
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// IsRunning 是否正在运行
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastTimestamp 最近一次取出任务的到期时间
func (s *Scheduler) LastTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// IsWorker 判断 ctx 是否来自本调度器正在执行的任务
func (s *Scheduler) IsWorker(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	w, _ := ctx.Value(workerKey{}).(*Scheduler)
	return w == s
}

// Run 在当前协程运行任务循环，直到 Stop 的结束标记被执行或 ctx 结束
//
// 普通任务错误只记录日志；RuntimeError 与 panic 交给 RuntimeErrorDelegate，
// 未设置时由 Run 返回。
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.loop(ctx)
}

// RunAsync 在新协程中运行任务循环
func (s *Scheduler) RunAsync(ctx context.Context) (*Future, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	f := newFuture()
	go func() {
		f.complete(s.loop(ctx))
	}()
	return f, nil
}

func (s *Scheduler) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.ending = false
	s.done = make(chan struct{})
	return nil
}

func (s *Scheduler) loop(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		s.mu.Lock()
		s.running = false
		close(s.done)
		s.mu.Unlock()
		s.log.Debug("scheduler stopped", logger.String("name", s.name))
	}()

	s.log.Debug("scheduler started", logger.String("name", s.name))
	wctx := context.WithValue(ctx, workerKey{}, s)
	for {
		t, ok := s.next(ctx)
		if !ok {
			return ctx.Err()
		}
		if err := s.execute(wctx, t); err != nil {
			if !IsFatal(err) {
				s.log.Warn("task failed",
					logger.String("name", s.name), logger.Uint64("task", t.id), logger.Err(err))
				continue
			}
			s.log.Error("task crashed",
				logger.String("name", s.name), logger.Uint64("task", t.id), logger.Err(err))
			if s.delegate == nil {
				return err
			}
			s.delegate.OnRuntimeError(err.Error())
		}
	}
}

// next 阻塞直到有任务到期；循环结束时返回 false
func (s *Scheduler) next(ctx context.Context) (*Task, bool) {
	for {
		s.mu.Lock()
		if s.ending {
			s.mu.Unlock()
			return nil, false
		}

		wait := time.Duration(-1)
		if head := s.queue.peek(); head != nil {
			now := s.clock.Now()
			if !head.due.After(now) {
				heap.Pop(&s.queue)
				if head.due.IsZero() {
					s.last = now
				} else {
					s.last = head.due
				}
				if !head.Enabled() {
					s.mu.Unlock()
					continue
				}
				if head.Repeated() {
					head.due = head.due.Add(head.interval)
					s.enqueueLocked(head)
				}
				s.mu.Unlock()
				return head, true
			}
			wait = head.due.Sub(now)
		}
		s.mu.Unlock()

		if wait < 0 {
			select {
			case <-s.wake:
			case <-ctx.Done():
				return nil, false
			}
			continue
		}

		timer := s.clock.NewTimer(wait)
		select {
		case <-s.wake:
		case <-timer.Chan():
		case <-ctx.Done():
			timer.Stop()
			return nil, false
		}
		timer.Stop()
	}
}

func (s *Scheduler) execute(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Panic: r}
		}
	}()
	return t.fn(ctx)
}

// Stop 提交结束标记
//
// 结束标记之前已到期的任务仍会执行。在工作协程外调用时阻塞到循环退出或 ctx 结束；
// 在任务内调用时 (传入任务收到的 ctx) 立即返回。
func (s *Scheduler) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	done := s.done
	s.mu.Unlock()

	s.Push(func(context.Context) error {
		s.mu.Lock()
		s.ending = true
		s.mu.Unlock()
		return nil
	})

	if s.IsWorker(ctx) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: wait for stop: %w", ctx.Err())
	}
}
