package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestJSONConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: zapcore.InfoLevel, Console: true, Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("chess move played", zap.String("san", "e4"))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "chess move played" || entry["san"] != "e4" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chess.log")
	logger, f, err := build(Config{Level: zapcore.InfoLevel, ToFile: true, Format: "legacy", FilePath: path}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer f.Close()
	logger.Warn("chess event publish failed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "WARN | ") || !strings.Contains(string(data), "chess event publish failed") {
		t.Fatalf("unexpected log: %q", data)
	}
}

func TestNoSinksIsNop(t *testing.T) {
	logger, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected nop logger")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "yaml")
	t.Setenv("LOG_TO_FILE", "")
	t.Setenv("LOG_FILE", "")
	cfg := ConfigFromEnv()
	if cfg.Level != zapcore.DebugLevel {
		t.Fatalf("level = %v", cfg.Level)
	}
	if cfg.Format != "legacy" {
		t.Fatalf("format = %q", cfg.Format)
	}
	if cfg.ToFile {
		t.Fatal("file logging should default off")
	}
	if cfg.FilePath != filepath.Join("logs", "chess-mcp.log") {
		t.Fatalf("file = %q", cfg.FilePath)
	}
}

func TestInitFromEnvAndSync(t *testing.T) {
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "chess.log"))
	if err := InitFromEnv(); err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	L().Info("started")
	if err := Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("logger should be reset after Sync")
	}
}
