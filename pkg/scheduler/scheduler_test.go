package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("等待超时")
	}
	var zero T
	return zero
}

func stop(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.False(t, s.IsRunning())
}

func TestScheduler_PushFIFO(t *testing.T) {
	s := New()

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		s.Push(func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	stop(t, s)
	require.NoError(t, f.Wait(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestScheduler_PushImmediate(t *testing.T) {
	s := New()
	var order []string
	s.Push(func(context.Context) error { order = append(order, "a"); return nil })
	s.Push(func(context.Context) error { order = append(order, "b"); return nil })
	s.PushImmediate(func(context.Context) error { order = append(order, "first"); return nil })

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	stop(t, s)
	<-f.Done()

	assert.Equal(t, []string{"first", "a", "b"}, order)
}

func TestScheduler_AlreadyRunning(t *testing.T) {
	s := New()
	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	require.True(t, s.IsRunning())

	err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	_, err = s.RunAsync(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	stop(t, s)
	assert.NoError(t, f.Err())
}

func TestScheduler_SingleShotDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(WithClock(clock))
	start := clock.Now()

	fired := make(chan time.Time, 1)
	s.PushSingleShot(100*time.Millisecond, func(context.Context) error {
		fired <- clock.Now()
		return nil
	})

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	defer stop(t, s)

	clock.BlockUntil(1)
	select {
	case <-fired:
		t.Fatal("任务早于到期时间执行")
	default:
	}

	clock.Advance(100 * time.Millisecond)
	got := recv(t, fired)
	assert.False(t, got.Before(start.Add(100*time.Millisecond)))
	assert.Equal(t, start.Add(100*time.Millisecond), s.LastTimestamp())
}

func TestScheduler_RepeatedKeepsPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(WithClock(clock))
	start := clock.Now()

	ticks := make(chan time.Time, 4)
	task := s.PushRepeated(10*time.Millisecond, func(context.Context) error {
		ticks <- clock.Now()
		// 模拟耗时任务
		clock.Advance(3 * time.Millisecond)
		return nil
	})
	require.True(t, task.Repeated())

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	defer stop(t, s)

	clock.BlockUntil(1)
	clock.Advance(10 * time.Millisecond)
	first := recv(t, ticks)

	// 下一次应在 start+20ms，而不是执行结束后的 start+23ms
	clock.BlockUntil(1)
	clock.Advance(7 * time.Millisecond)
	second := recv(t, ticks)

	assert.Equal(t, start.Add(10*time.Millisecond), first)
	assert.Equal(t, 10*time.Millisecond, second.Sub(first))
	task.Cancel()
}

func TestScheduler_CancelledTaskSkipped(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 1)
	task := s.Push(func(context.Context) error {
		ran <- struct{}{}
		return nil
	})
	task.SetEnabled(false)
	require.False(t, task.Enabled())

	done := make(chan struct{})
	s.Push(func(context.Context) error { close(done); return nil })

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	recv(t, done)
	stop(t, s)

	select {
	case <-ran:
		t.Fatal("已禁用的任务不应执行")
	default:
	}
}

func TestScheduler_RecoverableErrorContinues(t *testing.T) {
	s := New()
	done := make(chan struct{})
	s.Push(func(context.Context) error { return errors.New("boom") })
	s.Push(func(context.Context) error { close(done); return nil })

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	recv(t, done)
	assert.True(t, s.IsRunning())
	stop(t, s)
	assert.NoError(t, f.Err())
}

func TestScheduler_FatalWithoutDelegate(t *testing.T) {
	s := New()
	cause := errors.New("disk gone")
	s.Push(func(context.Context) error { return Fatal(cause) })

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = f.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsFatal(err))
	assert.False(t, s.IsRunning())
}

func TestScheduler_PanicToDelegate(t *testing.T) {
	messages := make(chan string, 1)
	s := New(WithRuntimeErrorDelegate(RuntimeErrorFunc(func(msg string) {
		messages <- msg
	})))

	done := make(chan struct{})
	s.Push(func(context.Context) error { panic("kaboom") })
	s.Push(func(context.Context) error { close(done); return nil })

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)

	assert.Contains(t, recv(t, messages), "kaboom")
	recv(t, done)
	stop(t, s)
}

func TestScheduler_StopFromWorker(t *testing.T) {
	s := New()
	stopped := make(chan error, 1)
	s.Push(func(ctx context.Context) error {
		assert.True(t, s.IsWorker(ctx))
		stopped <- s.Stop(ctx)
		return nil
	})

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	require.NoError(t, recv(t, stopped))
	require.NoError(t, f.Wait(context.Background()))
	assert.False(t, s.IsWorker(context.Background()))
}

func TestScheduler_ConcurrentPushKeepsArrivalOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(WithClock(clock))

	const producers, perProducer = 8, 200

	// 提交期间时钟一直在走，到期时间必须与入队顺序一致
	quit := make(chan struct{})
	ticked := make(chan struct{})
	go func() {
		defer close(ticked)
		for {
			select {
			case <-quit:
				return
			default:
				clock.Advance(time.Microsecond)
			}
		}
	}()

	var executed []uint64
	seen := make([][]int, producers)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				var task *Task
				task = s.Push(func(context.Context) error {
					executed = append(executed, task.ID())
					seen[p] = append(seen[p], i)
					return nil
				})
			}
		}(p)
	}
	wg.Wait()
	close(quit)
	<-ticked

	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	stop(t, s)
	require.NoError(t, f.Wait(context.Background()))

	require.Len(t, executed, producers*perProducer)
	for i := 1; i < len(executed); i++ {
		if executed[i-1] > executed[i] {
			t.Fatalf("任务未按入队顺序执行: 第 %d 个为 %d，之前为 %d", i, executed[i], executed[i-1])
		}
	}
	for p := range seen {
		require.Len(t, seen[p], perProducer)
		for i, v := range seen[p] {
			if v != i {
				t.Fatalf("生产者 %d 的第 %d 个任务顺序错误: %d", p, i, v)
			}
		}
	}
}

func TestScheduler_PushWhileRunning(t *testing.T) {
	s := New()
	f, err := s.RunAsync(context.Background())
	require.NoError(t, err)

	const producers, perProducer = 8, 300

	// 任务只在工作协程上执行，不需要加锁
	seen := make([][]int, producers)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.Push(func(context.Context) error {
					seen[p] = append(seen[p], i)
					return nil
				})
				_ = s.Len()
				_ = s.IsRunning()
			}
		}(p)
	}
	wg.Wait()

	stop(t, s)
	require.NoError(t, f.Wait(context.Background()))

	for p := range seen {
		require.Len(t, seen[p], perProducer, "生产者 %d 的任务未全部执行", p)
		for i, v := range seen[p] {
			if v != i {
				t.Fatalf("生产者 %d 的第 %d 个任务顺序错误: %d", p, i, v)
			}
		}
	}
}

func TestScheduler_ContextCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	f, err := s.RunAsync(ctx)
	require.NoError(t, err)

	cancel()
	assert.ErrorIs(t, f.Wait(context.Background()), context.Canceled)
	assert.False(t, s.IsRunning())
}

type counter struct {
	name string
	hits []int
}

func TestPushMethod_Receiver(t *testing.T) {
	s := New()
	c := &counter{name: "alive"}
	done := make(chan struct{})
	PushMethod(s, c, func(c *counter, _ context.Context) error {
		c.hits = append(c.hits, 1)
		close(done)
		return nil
	})

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	recv(t, done)
	stop(t, s)

	assert.Equal(t, []int{1}, c.hits)
	runtime.KeepAlive(c)
}

func TestPushMethod_ReceiverCollected(t *testing.T) {
	s := New()
	fired := make(chan struct{}, 1)

	func() {
		c := &counter{name: "gone", hits: make([]int, 0, 8)}
		PushSingleShotMethod(s, 0, c, func(*counter, context.Context) error {
			fired <- struct{}{}
			return nil
		})
	}()
	runtime.GC()
	runtime.GC()

	done := make(chan struct{})
	s.Push(func(context.Context) error { close(done); return nil })

	_, err := s.RunAsync(context.Background())
	require.NoError(t, err)
	recv(t, done)
	stop(t, s)

	select {
	case <-fired:
		t.Fatal("接收者已回收，任务应被跳过")
	default:
	}
}
