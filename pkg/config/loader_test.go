package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

var quiet = logger.New(io.Discard, logger.ErrorLevel)

func testdata(name string) string {
	return filepath.Join("..", "..", "internal", "testdata", name)
}

// copyFixture 复制测试配置到临时目录
func copyFixture(t *testing.T, name, as string) string {
	t.Helper()
	data, err := os.ReadFile(testdata(name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), as)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// 场景1：YAML 配置，未出现的字段保留默认值
func TestLoader_YAML(t *testing.T) {
	l := NewLoader(WithLogger(quiet))
	cfg, err := l.Load(testdata("statechart.yml"))
	if err != nil {
		t.Fatalf("加载YAML配置失败: %v", err)
	}

	if cfg.Machine.Name != "door" {
		t.Errorf("期望名称 door, 实际 %s", cfg.Machine.Name)
	}
	assert.Equal(t, 3, cfg.Machine.LogChannel)
	assert.Equal(t, "door-loop", cfg.Scheduler.Name)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, RotateByTime, cfg.Logger.Rotate.Mode)
	assert.Equal(t, time.Hour, cfg.Logger.Rotate.RotationTime.Std())
	assert.Equal(t, 7, cfg.Logger.Rotate.MaxAgeDays)
	assert.Equal(t, 10, cfg.Logger.Rotate.MaxBackups, "默认值")
	assert.Equal(t, FormatYAML, cfg.Record.Format)
	assert.Equal(t, uint64(8), cfg.Record.Channels)

	got, err := l.Config()
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

// 场景2：JSON 配置
func TestLoader_JSON(t *testing.T) {
	cfg, err := NewLoader(WithLogger(quiet)).Load(testdata("statechart.json"))
	if err != nil {
		t.Fatalf("加载JSON配置失败: %v", err)
	}
	assert.Equal(t, "turnstile", cfg.Machine.Name)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 30*time.Minute, cfg.Logger.Rotate.RotationTime.Std())
	assert.Equal(t, 20, cfg.Logger.Rotate.MaxSizeMB)
	assert.Equal(t, uint64(32), cfg.Record.Channels)
}

// 场景3：无后缀文件强制使用 JSON
func TestLoader_ForceFormat(t *testing.T) {
	path := copyFixture(t, "statechart.json", "engine")

	cfg, err := NewLoader(WithLogger(quiet), WithForceFormat(JSONSerializer{})).Load(path)
	if err != nil {
		t.Fatalf("加载无后缀配置失败: %v", err)
	}
	assert.Equal(t, "turnstile", cfg.Machine.Name)
}

// 场景4：默认路径查找
func TestLoader_DefaultPaths(t *testing.T) {
	path := copyFixture(t, "statechart.json", "engine.json")
	dir := filepath.Dir(path)

	l := NewLoader(
		WithLogger(quiet),
		WithAppName("engine"),
		WithDefaultPaths(filepath.Join(t.TempDir(), "{{.AppName}}"), filepath.Join(dir, "{{.AppName}}")),
	)
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, path, l.Path())
	assert.Equal(t, "turnstile", cfg.Machine.Name)

	_, err = NewLoader(WithLogger(quiet), WithDefaultPaths(t.TempDir()+"/none")).Load("")
	assert.ErrorIs(t, err, ErrNoConfigFile)
}

// 场景5：环境变量覆盖文件内容
func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("STATECHART_LOG_CHANNEL", "7")
	t.Setenv("STATECHART_ROTATION_TIME", "2h")
	t.Setenv("STATECHART_RECORD_CHANNELS", "0x10")
	t.Setenv("STATECHART_MACHINE_NAME", "from-env")

	cfg, err := NewLoader(WithLogger(quiet)).Load(testdata("statechart.yml"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Machine.LogChannel)
	assert.Equal(t, 2*time.Hour, cfg.Logger.Rotate.RotationTime.Std())
	assert.Equal(t, uint64(16), cfg.Record.Channels)
	assert.Equal(t, "from-env", cfg.Machine.Name)
}

func TestLoader_EnvInvalid(t *testing.T) {
	t.Setenv("STATECHART_LOG_CHANNEL", "abc")

	_, err := NewLoader(WithLogger(quiet)).Load(testdata("statechart.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATECHART_LOG_CHANNEL")
}

// 场景6：取值校验
func TestLoader_Invalid(t *testing.T) {
	_, err := NewLoader(WithLogger(quiet)).Load(testdata("invalid.yml"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	cfg := Default()
	require.NoError(t, cfg.Validate())
	cfg.Record.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
	cfg = Default()
	cfg.Logger.Rotate.Mode = "weekly"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
}

func TestLoader_NotLoaded(t *testing.T) {
	l := NewLoader(WithLogger(quiet))

	_, err := l.Config()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, l.Reload(), ErrNotLoaded)
	assert.ErrorIs(t, l.Save(), ErrNotLoaded)
	assert.NoError(t, l.Close())

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

// 场景7：保存后重载并触发回调
func TestLoader_SaveReloadOnChange(t *testing.T) {
	path := copyFixture(t, "statechart.yml", "engine.yml")
	l := NewLoader(WithLogger(quiet))
	cfg, err := l.Load(path)
	require.NoError(t, err)

	var changes [][2]*Config
	l.OnChange(func(old, new *Config) {
		changes = append(changes, [2]*Config{old, new})
	})

	cfg.Machine.Name = "saved"
	require.NoError(t, l.Save())
	require.NoError(t, l.Reload())

	if len(changes) != 1 {
		t.Fatalf("期望回调 1 次, 实际 %d", len(changes))
	}
	assert.Same(t, cfg, changes[0][0])
	assert.Equal(t, "saved", changes[0][1].Machine.Name)
	assert.Equal(t, time.Hour, changes[0][1].Logger.Rotate.RotationTime.Std())

	// 重载失败时保留旧配置
	require.NoError(t, os.WriteFile(path, []byte("machine: [broken"), 0o644))
	assert.Error(t, l.Reload())
	cur, _ := l.Config()
	assert.Equal(t, "saved", cur.Machine.Name)
	assert.Len(t, changes, 1)
}

func TestLoader_SaveAsFormats(t *testing.T) {
	l := NewLoader(WithLogger(quiet))
	cfg := Default()
	cfg.Logger.Rotate.RotationTime = Duration(90 * time.Minute)

	dir := t.TempDir()
	for _, name := range []string{"out.yml", "out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, l.SaveAs(path, cfg))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "1h30m0s", name)

		got, err := NewLoader(WithLogger(quiet)).Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, got, name)
	}
}

// 场景8：监听文件变化自动重载
func TestLoader_Watch(t *testing.T) {
	path := copyFixture(t, "statechart.yml", "engine.yml")
	l := NewLoader(WithLogger(quiet), WithConfigWatch(true, 50*time.Millisecond))
	defer l.Close()

	changed := make(chan *Config, 4)
	l.OnChange(func(_, new *Config) { changed <- new })

	_, err := l.Load(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	updated := strings.Replace(string(data), "name: door\n", "name: watched\n", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "watched", cfg.Machine.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("配置变更未被监听到")
	}
}

// 场景9：动态开关监听
func TestLoader_EnableWatch(t *testing.T) {
	path := copyFixture(t, "statechart.yml", "engine.yml")
	l := NewLoader(WithLogger(quiet))
	_, err := l.Load(path)
	require.NoError(t, err)

	if err := l.EnableWatch(true); err != nil {
		t.Fatalf("启用监听失败: %v", err)
	}
	require.NoError(t, l.EnableWatch(true), "重复启用")
	if err := l.EnableWatch(false); err != nil {
		t.Fatalf("停止监听失败: %v", err)
	}
	require.NoError(t, l.Close())
}

func TestExpandPath(t *testing.T) {
	got := expandPath("/etc/{{.AppName}}/{{.AppName}}.yml", "engine")
	assert.Equal(t, "/etc/engine/engine.yml", got)

	got = expandPath("{{.ExecDir}}/x", "engine")
	assert.False(t, strings.Contains(got, "{{"))
}

func TestCheckFile(t *testing.T) {
	assert.Error(t, checkFile(""))
	assert.Error(t, checkFile("/nonexistent/file.yml"))

	dir := t.TempDir()
	assert.Error(t, checkFile(dir))

	file := filepath.Join(dir, "a.yml")
	require.NoError(t, os.WriteFile(file, []byte("a: 1"), 0o644))
	assert.NoError(t, checkFile(file))
}
