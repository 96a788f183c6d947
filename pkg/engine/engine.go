// Package engine 将调度器、状态机组、审计输出与日志按配置组装在一起，
// 并负责信号处理与优雅退出。
package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"

	"github.com/junbin-yang/go-statechart/pkg/config"
	"github.com/junbin-yang/go-statechart/pkg/logger"
	"github.com/junbin-yang/go-statechart/pkg/recordlog"
	"github.com/junbin-yang/go-statechart/pkg/scheduler"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Engine 状态机引擎
//
// 所有状态机共享同一个调度器，审计记录写入同一组输出端。
type Engine struct {
	log             logger.Logger
	sink            statemachine.Sink
	clock           clockwork.Clock
	signals         []os.Signal
	shutdownTimeout time.Duration

	sched   *scheduler.Scheduler
	group   *statemachine.Group
	closers []io.Closer
	errChan chan error

	mu      sync.Mutex
	cfg     *config.Config
	hooks   hooks
	running bool
	closed  bool
	future  *scheduler.Future
}

// New 按配置创建引擎，cfg 为 nil 时使用默认配置
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:             cfg,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		group:           statemachine.NewGroup(),
		errChan:         make(chan error, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		l, err := NewLogger(&cfg.Logger)
		if err != nil {
			return nil, err
		}
		e.log = l
	}
	if e.sink == nil {
		p, err := recordlog.New(cfg, e.log)
		if err != nil {
			return nil, err
		}
		e.sink = p
		e.closers = append(e.closers, p)
	}

	schedOpts := []scheduler.Option{
		scheduler.WithName(cfg.Scheduler.Name),
		scheduler.WithLogger(e.log),
		scheduler.WithRuntimeErrorDelegate(scheduler.RuntimeErrorFunc(e.onRuntimeError)),
	}
	if e.clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(e.clock))
	}
	e.sched = scheduler.New(schedOpts...)
	return e, nil
}

func (e *Engine) Logger() logger.Logger            { return e.log }
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }
func (e *Engine) Group() *statemachine.Group      { return e.group }

// Config 当前生效的配置
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// NewMachine 创建状态机并加入状态机组，引擎运行中时立即启动
//
// name 为空时使用配置中的 machine.name。opts 在默认选项之后应用。
func (e *Engine) NewMachine(name string, root *statemachine.Node, opts ...statemachine.Option) (*statemachine.Machine, error) {
	cfg := e.Config()
	if name == "" {
		name = cfg.Machine.Name
	}
	if _, ok := e.group.GetMachine(name); ok {
		return nil, ErrMachineExists
	}

	base := []statemachine.Option{
		statemachine.WithName(name),
		statemachine.WithLogChannel(cfg.Machine.LogChannel),
		statemachine.WithSink(e.sink),
		statemachine.WithLogger(e.log),
	}
	m, err := statemachine.NewMachine(e.sched, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := m.SetRootState(root); err != nil {
		return nil, err
	}
	if err := e.group.AddMachine(m); err != nil {
		return nil, err
	}

	if e.IsRunning() {
		if err := m.Start(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// OnStartup 注册启动钩子，在调度器启动之前调用
func (e *Engine) OnStartup(fn HookFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks.onStartup = append(e.hooks.onStartup, fn)
}

// OnShutdown 注册退出钩子，在调度器停止之后按注册的逆序调用
func (e *Engine) OnShutdown(fn HookFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks.onShutdown = append(e.hooks.onShutdown, fn)
}

// OnTimeout 注册超时钩子
func (e *Engine) OnTimeout(fn HookFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks.onTimeout = append(e.hooks.onTimeout, fn)
}

// Start 调用启动钩子、启动调度器并启动所有已注册的状态机
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	h := e.hooks
	e.mu.Unlock()

	if err := h.callStartup(ctx); err != nil {
		return err
	}

	f, err := e.sched.RunAsync(context.Background())
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.running = true
	e.future = f
	e.mu.Unlock()

	for _, name := range e.group.Names() {
		m, ok := e.group.GetMachine(name)
		if !ok || m.IsStarted() {
			continue
		}
		if err := m.Start(); err != nil {
			e.log.Warn("start machine failed", logger.String("machine", name), logger.Err(err))
		}
	}
	e.log.Info("engine started",
		logger.String("scheduler", e.sched.Name()), logger.Int("machines", e.group.Count()))
	return nil
}

// Run 启动引擎并阻塞，直到收到退出信号、ctx 结束或调度器出现运行时错误
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, e.signals...)
	defer signal.Stop(sig)

	e.mu.Lock()
	f := e.future
	e.mu.Unlock()

	var runErr error
	select {
	case s := <-sig:
		e.log.Info("received signal", logger.String("signal", s.String()))
	case runErr = <-e.errChan:
	case <-f.Done():
		runErr = f.Err()
	case <-ctx.Done():
	}

	return multierr.Append(runErr, e.Shutdown())
}

// Shutdown 停止所有状态机与调度器，调用退出钩子并关闭审计输出
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.running = false
	e.closed = true
	f, h := e.future, e.hooks
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
	defer cancel()

	e.group.StopAll()
	if err := e.sched.Stop(ctx); err != nil {
		h.callTimeout(ctx)
		return ErrShutdownTimeout
	}
	err := f.Wait(ctx)
	err = multierr.Append(err, h.callShutdown(ctx))
	for _, c := range e.closers {
		err = multierr.Append(err, c.Close())
	}

	e.log.Info("engine stopped", logger.String("scheduler", e.sched.Name()))
	_ = e.log.Sync()
	return err
}

// WatchConfig 配置重载后调整日志级别与各状态机的审计通道
func (e *Engine) WatchConfig(l *config.Loader) {
	l.OnChange(func(old, new *config.Config) {
		e.mu.Lock()
		e.cfg = new
		e.mu.Unlock()

		if level, err := logger.ParseLevel(new.Logger.Level); err == nil {
			e.log.SetLevel(level)
		}
		if old == nil || old.Machine.LogChannel != new.Machine.LogChannel {
			for _, name := range e.group.Names() {
				if m, ok := e.group.GetMachine(name); ok {
					m.SetLogChannel(new.Machine.LogChannel)
				}
			}
		}
		e.log.Info("engine config reloaded",
			logger.String("level", new.Logger.Level), logger.Int("log_channel", new.Machine.LogChannel))
	})
}

func (e *Engine) onRuntimeError(msg string) {
	e.log.Error("scheduler runtime error", logger.String("error", msg))
	select {
	case e.errChan <- errors.New(msg):
	default:
	}
}
