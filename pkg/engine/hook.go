package engine

import "context"

// HookFunc 钩子函数
type HookFunc func(ctx context.Context) error

// hooks 钩子集合
type hooks struct {
	onStartup  []HookFunc
	onShutdown []HookFunc
	onTimeout  []HookFunc
}

// callStartup 按注册顺序调用，第一个错误中止启动
func (h *hooks) callStartup(ctx context.Context) error {
	for _, fn := range h.onStartup {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// callShutdown 按注册的逆序调用
func (h *hooks) callShutdown(ctx context.Context) error {
	for i := len(h.onShutdown) - 1; i >= 0; i-- {
		if err := h.onShutdown[i](ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *hooks) callTimeout(ctx context.Context) {
	for _, fn := range h.onTimeout {
		_ = fn(ctx)
	}
}
