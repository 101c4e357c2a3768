package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-mcp/pkg/chessdto"
)

const (
	DefaultChannel = "chess:events"
	defaultTimeout = 2 * time.Second
	lastEventTTL   = 24 * time.Hour
)

// Redis publishes each event on a pub/sub channel and keeps the most recent
// one under "<channel>:last".
type Redis struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
	logger  *zap.Logger
}

type RedisOption func(*Redis)

func WithChannel(ch string) RedisOption {
	return func(r *Redis) {
		if s := strings.TrimSpace(ch); s != "" {
			r.channel = s
		}
	}
}

func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRedis(ctx context.Context, redisURL string, opts ...RedisOption) (*Redis, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL required for event feed")
	}
	ropts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	r := &Redis{
		rdb:     redis.NewClient(ropts),
		channel: DefaultChannel,
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	pingCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Ping(pingCtx).Err(); err != nil {
		_ = r.rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	r.logger.Info("event feed connected", zap.String("addr", ropts.Addr), zap.String("channel", r.channel))
	return r, nil
}

func (r *Redis) Channel() string { return r.channel }

func (r *Redis) lastKey() string { return r.channel + ":last" }

func (r *Redis) Publish(ctx context.Context, ev chessdto.GameEvent) error {
	if r == nil || r.rdb == nil {
		return errors.New("redis feed not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipe := r.rdb.TxPipeline()
	pipe.Publish(ctx, r.channel, raw)
	pipe.Set(ctx, r.lastKey(), raw, lastEventTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	r.logger.Debug("event published",
		zap.String("channel", r.channel),
		zap.String("event", ev.Type),
		zap.String("game_id", ev.GameID),
		zap.Int("ply", ev.Ply),
	)
	return nil
}

// Last returns the most recent event, or nil when none was stored.
func (r *Redis) Last(ctx context.Context) (*chessdto.GameEvent, error) {
	raw, err := r.rdb.Get(ctx, r.lastKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read last event: %w", err)
	}
	var ev chessdto.GameEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode last event: %w", err)
	}
	return &ev, nil
}

// Subscribe calls fn for every event on the channel until ctx ends.
// Payloads that do not decode are skipped.
func (r *Redis) Subscribe(ctx context.Context, fn func(chessdto.GameEvent)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev chessdto.GameEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Warn("event decode failed", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()}
	}
	return opts, nil
}
