package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/junbin-yang/go-statechart/pkg/logger"
)

// Config 状态机引擎配置
type Config struct {
	Machine   MachineConfig   `yaml:"machine" json:"machine"`
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`
	Logger    LoggerConfig    `yaml:"logger" json:"logger"`
	Record    RecordConfig    `yaml:"record" json:"record"`
}

type MachineConfig struct {
	Name       string `yaml:"name" json:"name" env:"STATECHART_MACHINE_NAME"`
	LogChannel int    `yaml:"log_channel" json:"log_channel" env:"STATECHART_LOG_CHANNEL"`
}

type SchedulerConfig struct {
	Name string `yaml:"name" json:"name" env:"STATECHART_SCHEDULER_NAME"`
}

// LoggerConfig 日志输出，File 为空时写到标准错误
type LoggerConfig struct {
	Level  string       `yaml:"level" json:"level" env:"STATECHART_LOG_LEVEL"`
	File   string       `yaml:"file" json:"file" env:"STATECHART_LOG_FILE"`
	Rotate RotateConfig `yaml:"rotate" json:"rotate"`
}

// RotateConfig 文件轮转，Mode 为 size 或 time
type RotateConfig struct {
	Mode         string   `yaml:"mode" json:"mode" env:"STATECHART_ROTATE_MODE"`
	MaxSizeMB    int      `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups   int      `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays   int      `yaml:"max_age_days" json:"max_age_days"`
	RotationTime Duration `yaml:"rotation_time" json:"rotation_time" env:"STATECHART_ROTATION_TIME"`
	LocalTime    bool     `yaml:"local_time" json:"local_time"`
	Compress     bool     `yaml:"compress" json:"compress"`
}

// RecordConfig 审计记录输出
//
// File 为空时只写日志；Channels 为通道位掩码，0 表示接收所有通道。
// QueueSize 大于 0 时文件在独立协程中写入，队列满时丢弃记录。
type RecordConfig struct {
	File      string `yaml:"file" json:"file" env:"STATECHART_RECORD_FILE"`
	Format    string `yaml:"format" json:"format" env:"STATECHART_RECORD_FORMAT"`
	Channels  uint64 `yaml:"channels" json:"channels" env:"STATECHART_RECORD_CHANNELS"`
	QueueSize int    `yaml:"queue_size" json:"queue_size"`
}

const (
	RotateBySize = "size"
	RotateByTime = "time"

	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default 默认配置
func Default() *Config {
	return &Config{
		Machine:   MachineConfig{Name: "State machine", LogChannel: 63},
		Scheduler: SchedulerConfig{Name: "scheduler"},
		Logger: LoggerConfig{
			Level: "info",
			Rotate: RotateConfig{
				Mode:         RotateBySize,
				MaxSizeMB:    100,
				MaxBackups:   10,
				MaxAgeDays:   30,
				RotationTime: Duration(24 * time.Hour),
				LocalTime:    true,
			},
		},
		Record: RecordConfig{Format: FormatJSON},
	}
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.Machine.LogChannel < 0 || c.Machine.LogChannel > 63 {
		return fmt.Errorf("%w: machine.log_channel %d out of range 0-63", ErrInvalidValue, c.Machine.LogChannel)
	}
	if c.Logger.Level != "" {
		if _, err := logger.ParseLevel(c.Logger.Level); err != nil {
			return fmt.Errorf("%w: logger.level: %v", ErrInvalidValue, err)
		}
	}
	switch c.Logger.Rotate.Mode {
	case "", RotateBySize, RotateByTime:
	default:
		return fmt.Errorf("%w: logger.rotate.mode %q", ErrInvalidValue, c.Logger.Rotate.Mode)
	}
	switch c.Record.Format {
	case "", FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: record.format %q", ErrInvalidValue, c.Record.Format)
	}
	if c.Record.QueueSize < 0 {
		return fmt.Errorf("%w: record.queue_size %d", ErrInvalidValue, c.Record.QueueSize)
	}
	return nil
}

// LoggerRotate 转换为 logger 包的轮转配置
func (c *LoggerConfig) LoggerRotate(filename string) *logger.RotateConfig {
	return &logger.RotateConfig{
		Filename:     filename,
		MaxSize:      c.Rotate.MaxSizeMB,
		MaxBackups:   c.Rotate.MaxBackups,
		Compress:     c.Rotate.Compress,
		RotationTime: c.Rotate.RotationTime.Std(),
		MaxAge:       c.Rotate.MaxAgeDays,
		LocalTime:    c.Rotate.LocalTime,
	}
}

// Duration 以 "1h30m" 形式读写的时间间隔
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

var _ yaml.Marshaler = Duration(0)
