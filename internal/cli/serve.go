package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/chess-mcp/internal/chessbuilder"
	"github.com/park285/chess-mcp/internal/config"
	"github.com/park285/chess-mcp/internal/mcpserver"
	"github.com/park285/chess-mcp/internal/obslog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP chess server. The transport is chosen with CHESS_TRANSPORT:
"stdio" (default) speaks MCP over stdin/stdout, "http" serves streamable HTTP
at /mcp on CHESS_HTTP_ADDR. When CHESS_HTTP_ADDR is set the spectator
endpoints (/state, /state.json, /board.png, /ws) are served as well.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := obslog.L()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("chess init error: %w", err)
	}
	srv, err := mcpserver.New(deps.Dispatcher, mcpserver.WithLogger(logger.Named("mcp")))
	if err != nil {
		_ = deps.Close()
		return err
	}

	var httpSrv *http.Server
	httpErr := make(chan error, 1)
	if cfg.SpectatorEnabled() {
		mux := http.NewServeMux()
		spectator, err := deps.Spectator(logger.Named("spectate"))
		if err != nil {
			_ = deps.Close()
			return err
		}
		spectator.Register(mux)
		if cfg.Transport == config.TransportHTTP {
			mux.Handle("/mcp", srv.HTTPHandler())
		}
		httpSrv = &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("transport", cfg.Transport))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", zap.Error(err))
				httpErr <- err
			}
		}()
	}

	var result *multierror.Error
	switch cfg.Transport {
	case config.TransportHTTP:
		select {
		case <-ctx.Done():
		case err := <-httpErr:
			result = multierror.Append(result, fmt.Errorf("http server: %w", err))
		}
	default:
		if err := srv.RunStdio(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	stop()
	logger.Info("shutting down")

	if httpSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := httpSrv.Shutdown(sctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
		}
		cancel()
	}
	if err := deps.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
