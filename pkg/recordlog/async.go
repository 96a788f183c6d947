package recordlog

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// AsyncSink 在独立协程中写下游输出端，调度器协程只负责入队
//
// 队列是定长环形缓冲。队列满时默认丢弃新记录并返回 ErrQueueFull，
// WithBlocking 时等待空位。Close 会先写完队列中剩余的记录。
type AsyncSink struct {
	next  Sink
	log   logger.Logger
	block bool

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buffer   []Entry
	head     int
	tail     int
	size     int
	closed   bool
	done     chan struct{}

	submitted atomic.Uint64
	written   atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// AsyncOption 异步输出端选项
type AsyncOption func(*AsyncSink)

// WithBlocking 队列满时阻塞等待
func WithBlocking(block bool) AsyncOption {
	return func(s *AsyncSink) { s.block = block }
}

// WithAsyncLogger 记录下游写入失败的日志
func WithAsyncLogger(l logger.Logger) AsyncOption {
	return func(s *AsyncSink) {
		if l != nil {
			s.log = l
		}
	}
}

// NewAsyncSink 创建异步输出端，capacity 小于 1 时按 1 处理
func NewAsyncSink(next Sink, capacity int, opts ...AsyncOption) *AsyncSink {
	if capacity < 1 {
		capacity = 1
	}
	s := &AsyncSink{
		next:   next,
		log:    logger.Default(),
		buffer: make([]Entry, capacity),
		done:   make(chan struct{}),
	}
	s.notEmpty = sync.NewCond(&s.mu)
	s.notFull = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}

	go s.loop()
	return s
}

func (s *AsyncSink) Emit(channel uint64, rec *statemachine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.size == len(s.buffer) {
		if s.closed {
			return ErrSinkClosed
		}
		if !s.block {
			s.dropped.Add(1)
			return ErrQueueFull
		}
		s.notFull.Wait()
	}
	if s.closed {
		return ErrSinkClosed
	}

	s.buffer[s.tail] = Entry{Channel: channel, Record: rec}
	s.tail = (s.tail + 1) % len(s.buffer)
	s.size++
	s.submitted.Add(1)

	s.notEmpty.Signal()
	return nil
}

func (s *AsyncSink) pop() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.size == 0 {
		if s.closed {
			return Entry{}, false
		}
		s.notEmpty.Wait()
	}

	e := s.buffer[s.head]
	s.buffer[s.head] = Entry{}
	s.head = (s.head + 1) % len(s.buffer)
	s.size--

	s.notFull.Signal()
	return e, true
}

func (s *AsyncSink) loop() {
	defer close(s.done)
	for {
		e, ok := s.pop()
		if !ok {
			return
		}
		if err := s.next.Emit(e.Channel, e.Record); err != nil {
			s.failed.Add(1)
			s.log.Warn("write transition record failed", logger.String("machine", e.Record.Name), logger.Err(err))
			continue
		}
		s.written.Add(1)
	}
}

// Len 等待写入的记录数
func (s *AsyncSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Close 写完剩余记录后关闭，下游实现 io.Closer 时一并关闭
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.notEmpty.Broadcast()
	s.notFull.Broadcast()
	s.mu.Unlock()

	<-s.done
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// AsyncStats 统计快照
type AsyncStats struct {
	Submitted uint64
	Written   uint64
	Dropped   uint64
	Failed    uint64
	Pending   int
}

func (s *AsyncSink) Stats() AsyncStats {
	return AsyncStats{
		Submitted: s.submitted.Load(),
		Written:   s.written.Load(),
		Dropped:   s.dropped.Load(),
		Failed:    s.failed.Load(),
		Pending:   s.Len(),
	}
}
