package engine

import (
	"fmt"

	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

var (
	// ErrAlreadyRunning 当引擎已在运行时返回
	ErrAlreadyRunning = fmt.Errorf("engine already running")

	// ErrNotRunning 当引擎未运行时返回
	ErrNotRunning = fmt.Errorf("engine not running")

	// ErrShutdownTimeout 当退出超时时返回
	ErrShutdownTimeout = fmt.Errorf("shutdown timeout")

	// ErrMachineExists 当同名状态机已注册时返回
	ErrMachineExists = statemachine.ErrMachineExists

	// ErrClosed 引擎已退出，不能再次启动
	ErrClosed = fmt.Errorf("engine closed")
)
