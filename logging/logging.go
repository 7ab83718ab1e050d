// Package logging 基于 zerolog 配置全局日志。
//
// 进程启动时调用一次 Init；各组件通过 Component 获取带 component 字段的子 logger：
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger := logging.Component("server")
//	logger.Info().Str("addr", addr).Msg("listening")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 日志配置
type Config struct {
	// Level 最低日志级别：trace, debug, info, warn, error, disabled（默认 info）
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`

	// Format 输出格式：json 或 console（默认 json）
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json console"`

	// Caller 是否输出调用位置
	Caller bool `yaml:"caller" json:"caller"`

	// Output 输出目标（默认 os.Stderr）
	Output io.Writer `yaml:"-" json:"-"`
}

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init 配置全局 logger，可重复调用。
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	mu.Lock()
	log = ctx.Logger()
	mu.Unlock()
}

// ParseLevel 把字符串级别转换为 zerolog.Level，无法识别时返回 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger 替换全局 logger（测试使用）
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Component 返回带 component 字段的子 logger
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}
