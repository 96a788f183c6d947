package config

import "fmt"

var (
	// ErrNotLoaded 在 Load 成功之前读取或保存配置时返回
	ErrNotLoaded = fmt.Errorf("config not loaded")

	// ErrNoConfigFile 默认路径下找不到任何配置文件
	ErrNoConfigFile = fmt.Errorf("no valid config file found")

	// ErrInvalidValue 配置项取值非法
	ErrInvalidValue = fmt.Errorf("invalid config value")
)
