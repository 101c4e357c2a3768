package obslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger. Console output goes to stderr; stdout carries the MCP stdio transport.
var (
	mu           sync.RWMutex
	globalLogger = zap.NewNop()
	logFile      *os.File
)

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

type Config struct {
	Level    zapcore.Level
	Console  bool
	ToFile   bool
	Caller   bool
	Format   string // legacy | console | json
	FilePath string
}

// ConfigFromEnv reads LOG_* variables.
func ConfigFromEnv() Config {
	format := strings.ToLower(strings.TrimSpace(getenvDefault("LOG_FORMAT", "legacy")))
	if format != "legacy" && format != "json" && format != "console" {
		format = "legacy"
	}
	return Config{
		Level:    parseLevel(getenvDefault("LOG_LEVEL", "info")),
		Console:  strings.EqualFold(getenvDefault("LOG_TO_CONSOLE", "true"), "true"),
		ToFile:   strings.EqualFold(getenvDefault("LOG_TO_FILE", "false"), "true"),
		Caller:   strings.EqualFold(getenvDefault("LOG_CALLER", "false"), "true"),
		Format:   format,
		FilePath: strings.TrimSpace(getenvDefault("LOG_FILE", filepath.Join("logs", "chess-mcp.log"))),
	}
}

// InitFromEnv replaces the global logger with one built from the environment.
func InitFromEnv() error {
	logger, f, err := build(ConfigFromEnv(), os.Stderr)
	if err != nil {
		return err
	}
	mu.Lock()
	prev := logFile
	globalLogger, logFile = logger, f
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// New builds a logger writing console output to w.
func New(cfg Config, w io.Writer) (*zap.Logger, error) {
	logger, _, err := build(cfg, w)
	return logger, err
}

// Sync flushes the global logger and closes the log file, if any.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	err := globalLogger.Sync()
	if logFile != nil {
		if cerr := logFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
		logFile = nil
	}
	globalLogger = zap.NewNop()
	return err
}

func build(cfg Config, console io.Writer) (*zap.Logger, *os.File, error) {
	var cores []zapcore.Core
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(encoderFor(cfg.Format), zapcore.AddSync(console), cfg.Level))
	}

	var f *os.File
	if cfg.ToFile {
		if err := ensureDir(filepath.Dir(cfg.FilePath)); err != nil {
			return nil, nil, err
		}
		var err error
		f, err = os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoderFor(cfg.Format), zapcore.AddSync(f), cfg.Level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if cfg.Caller || cfg.Format == "legacy" {
		logger = logger.WithOptions(zap.AddCaller())
	}
	logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, f, nil
}

func encoderFor(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig(false))
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// encoder configs
func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
