package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type AppConfig struct {
	Transport string
	HTTPAddr  string

	BoardImage  bool
	MessagesDir string

	RedisURL    string
	FeedChannel string
	FeedTimeout time.Duration

	ShutdownTimeout time.Duration
}

// SpectatorEnabled reports whether the HTTP spectator endpoints are served.
func (c *AppConfig) SpectatorEnabled() bool { return c.HTTPAddr != "" }

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Transport:       TransportStdio,
		FeedChannel:     "chess:events",
		FeedTimeout:     2 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_TRANSPORT")); v != "" {
		cfg.Transport = strings.ToLower(v)
	}
	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("CHESS_HTTP_ADDR"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := strings.TrimSpace(os.Getenv("CHESS_BOARD_IMAGE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.BoardImage = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_FEED_CHANNEL")); v != "" {
		cfg.FeedChannel = v
	}

	var err error
	if cfg.FeedTimeout, err = durationEnv("CHESS_FEED_TIMEOUT", cfg.FeedTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("CHESS_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	switch cfg.Transport {
	case TransportStdio:
	case TransportHTTP:
		if cfg.HTTPAddr == "" {
			return nil, errors.New("CHESS_HTTP_ADDR is required for http transport")
		}
	default:
		return nil, fmt.Errorf("CHESS_TRANSPORT %q is not supported", cfg.Transport)
	}

	return cfg, nil
}

// durationEnv accepts Go durations ("1500ms") or whole seconds ("2").
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("%s must be positive", key)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
