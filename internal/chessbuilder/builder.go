package chessbuilder

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/park285/chess-mcp/internal/board"
	"github.com/park285/chess-mcp/internal/config"
	"github.com/park285/chess-mcp/internal/dispatch"
	"github.com/park285/chess-mcp/internal/feed"
	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/presenter"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/internal/spectate"
)

// Deps is the object graph shared by the serve and play commands.
type Deps struct {
	Engine     rules.Engine
	Catalog    *msgcat.Catalog
	Formatter  *presenter.Formatter
	Renderer   *board.Renderer
	Hub        *spectate.Hub
	Feed       *feed.Redis
	Holder     *session.Holder
	Dispatcher *dispatch.Dispatcher
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	d := &Deps{
		Engine:    rules.NewCorentings(),
		Catalog:   catalog,
		Formatter: presenter.NewFormatter(catalog),
		Renderer:  board.NewRenderer(),
		Hub:       spectate.NewHub(0, logger.Named("spectate")),
	}

	// Redis is optional; without it events only reach spectators.
	sinks := []feed.Publisher{d.Hub}
	if cfg.RedisURL != "" {
		d.Feed, err = feed.NewRedis(ctx, cfg.RedisURL,
			feed.WithChannel(cfg.FeedChannel),
			feed.WithTimeout(cfg.FeedTimeout),
			feed.WithLogger(logger.Named("feed")),
		)
		if err != nil {
			return nil, fmt.Errorf("init event feed: %w", err)
		}
		sinks = append(sinks, d.Feed)
	}

	d.Holder, err = session.New(d.Engine,
		session.WithLogger(logger.Named("session")),
		session.WithSink(feed.Combine(sinks...)),
	)
	if err != nil {
		_ = d.Close()
		return nil, err
	}

	opts := []dispatch.Option{dispatch.WithLogger(logger.Named("dispatch"))}
	if cfg.BoardImage {
		opts = append(opts, dispatch.WithImages(d.Renderer))
	}
	d.Dispatcher, err = dispatch.New(d.Holder, catalog, opts...)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}
	return d, nil
}

// Spectator builds the HTTP handler for the read-only endpoints.
func (d *Deps) Spectator(logger *zap.Logger) (*spectate.Handler, error) {
	return spectate.NewHandler(d.Holder, d.Formatter, d.Hub,
		spectate.WithImages(d.Renderer),
		spectate.WithLogger(logger),
	)
}

// Close releases the hub and the Redis client, returning every failure.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var result *multierror.Error
	if d.Hub != nil {
		if err := d.Hub.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close hub: %w", err))
		}
	}
	if d.Feed != nil {
		if err := d.Feed.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close feed: %w", err))
		}
	}
	return result.ErrorOrNil()
}
