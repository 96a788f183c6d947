package recordlog

import (
	"sync"

	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Entry 内存输出端保存的一条记录
type Entry struct {
	Channel uint64
	Record  *statemachine.Record
}

// MemorySink 在内存中保留最近的记录，limit 为 0 时不限数量
type MemorySink struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Emit(channel uint64, rec *statemachine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Channel: channel, Record: rec})
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = append(s.entries[:0:0], s.entries[len(s.entries)-s.limit:]...)
	}
	return nil
}

// Entries 返回副本
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Records 只返回记录
func (s *MemorySink) Records() []*statemachine.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*statemachine.Record, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Record
	}
	return out
}

func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}
