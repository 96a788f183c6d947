package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// Loader 加载、保存并监听引擎配置文件
//
// 配置优先级：文件 < 环境变量。每次重载都基于 Default 重新解析，
// 重载成功后依次调用 OnChange 注册的回调。
type Loader struct {
	appName      string
	serializer   Serializer
	forceFormat  Serializer
	formats      []Serializer
	defaultPaths []string
	log          logger.Logger

	mu        sync.RWMutex
	path      string
	cfg       *Config
	callbacks []func(old, new *Config)

	// 监听
	watch    bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewLoader 创建配置加载器
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		appName:    "statechart",
		serializer: YAMLSerializer{},
		formats:    []Serializer{YAMLSerializer{}, JSONSerializer{}},
		defaultPaths: []string{
			"./{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"/etc/{{.AppName}}/{{.AppName}}",
		},
		log:      logger.Default(),
		debounce: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load 从 path 加载配置，path 为空时依次查找默认路径
func (l *Loader) Load(path string) (*Config, error) {
	var (
		s   Serializer
		err error
	)
	if path != "" {
		if err = checkFile(path); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		s = l.choose(path)
	} else if path, s, err = l.find(); err != nil {
		return nil, err
	}

	cfg, err := l.parse(path, s)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.path = path
	l.serializer = s
	l.cfg = cfg
	watch := l.watch
	l.mu.Unlock()

	l.log.Info("config loaded", logger.String("path", path), logger.String("format", s.Name()))
	if watch {
		if err := l.startWatch(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Config 最近一次成功加载的配置
func (l *Loader) Config() (*Config, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.cfg == nil {
		return nil, ErrNotLoaded
	}
	return l.cfg, nil
}

// Path 当前配置文件路径
func (l *Loader) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Save 写回当前配置，先写临时文件再替换
func (l *Loader) Save() error {
	l.mu.RLock()
	cfg, path, s := l.cfg, l.path, l.serializer
	l.mu.RUnlock()
	if cfg == nil || path == "" {
		return ErrNotLoaded
	}
	return writeFile(path, s, cfg)
}

// SaveAs 将配置写到指定路径，格式按后缀选择
func (l *Loader) SaveAs(path string, cfg *Config) error {
	return writeFile(path, l.choose(path), cfg)
}

func writeFile(path string, s Serializer, cfg *Config) error {
	data, err := s.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}
	return nil
}

// Reload 重新解析当前文件，失败时保留旧配置
func (l *Loader) Reload() error {
	l.mu.RLock()
	path, s := l.path, l.serializer
	l.mu.RUnlock()
	if path == "" {
		return ErrNotLoaded
	}

	cfg, err := l.parse(path, s)
	if err != nil {
		return err
	}

	l.mu.Lock()
	old := l.cfg
	l.cfg = cfg
	callbacks := make([]func(old, new *Config), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.mu.Unlock()

	// 回调在锁外执行
	for _, cb := range callbacks {
		cb(old, cfg)
	}
	return nil
}

// OnChange 注册配置变更回调
func (l *Loader) OnChange(cb func(old, new *Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, cb)
}

// EnableWatch 动态开启或关闭文件监听
func (l *Loader) EnableWatch(enable bool) error {
	l.mu.Lock()
	l.watch = enable
	loaded := l.path != ""
	l.mu.Unlock()

	if !enable {
		l.stopWatch()
		return nil
	}
	if loaded {
		return l.startWatch()
	}
	return nil
}

// Close 停止监听
func (l *Loader) Close() error {
	l.stopWatch()
	return nil
}

/* ------------------------------ 内部方法 ------------------------------ */

// choose 强制格式 > 后缀识别 > 默认
func (l *Loader) choose(path string) Serializer {
	if l.forceFormat != nil {
		return l.forceFormat
	}
	if s := serializerFor(filepath.Ext(path), l.formats); s != nil {
		return s
	}
	return l.serializer
}

func (l *Loader) find() (string, Serializer, error) {
	for _, tpl := range l.defaultPaths {
		base := expandPath(tpl, l.appName)

		if checkFile(base) == nil {
			return base, l.choose(base), nil
		}
		for _, f := range l.formats {
			for _, ext := range f.Exts() {
				if full := base + ext; checkFile(full) == nil {
					return full, f, nil
				}
			}
		}
	}
	return "", nil, ErrNoConfigFile
}

func (l *Loader) parse(path string, s Serializer) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	cfg := Default()
	if err := s.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed (%s): %w", s.Name(), err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) startWatch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	// 监听所在目录，编辑器以重命名方式保存时文件本身会被替换
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}

	l.watcher = w
	l.quit = make(chan struct{})
	l.wg.Add(1)
	go l.watchLoop(w, l.quit, l.path)
	return nil
}

func (l *Loader) stopWatch() {
	l.mu.Lock()
	w, quit := l.watcher, l.quit
	l.watcher, l.quit = nil, nil
	l.mu.Unlock()

	if w == nil {
		return
	}
	close(quit)
	w.Close()
	l.wg.Wait()
}

func (l *Loader) watchLoop(w *fsnotify.Watcher, quit chan struct{}, path string) {
	defer l.wg.Done()

	target := filepath.Clean(path)
	debounce := time.NewTimer(l.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(l.debounce)
			}

		case <-debounce.C:
			if err := l.Reload(); err != nil {
				l.log.Warn("config auto reload failed", logger.String("path", path), logger.Err(err))
			} else {
				l.log.Info("config auto reloaded", logger.String("path", path))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.log.Warn("config watch error", logger.String("path", path), logger.Err(err))

		case <-quit:
			return
		}
	}
}
