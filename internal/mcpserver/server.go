package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/park285/chess-mcp/internal/dispatch"
)

const (
	serverName    = "chess-server"
	serverVersion = "0.1.0"
	instructions  = "Play chess: call new_game first, then make_move with UCI (e2e4) or SAN (e4, Nf3) moves, " +
		"and get_game_state to review the board."
)

// Commands is the dispatcher surface exposed as tools.
type Commands interface {
	NewGame(ctx context.Context) dispatch.Result
	MakeMove(ctx context.Context, move string) dispatch.Result
	GameState(ctx context.Context) dispatch.Result
}

type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(cmds Commands, opts ...Option) (*Server, error) {
	if cmds == nil {
		return nil, errors.New("commands are required")
	}
	s := &Server{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: instructions,
	})
	mcp.AddTool(s.mcpServer, NewGameTool(), NewGameHandler(cmds))
	mcp.AddTool(s.mcpServer, MakeMoveTool(), MakeMoveHandler(cmds))
	mcp.AddTool(s.mcpServer, GameStateTool(), GameStateHandler(cmds))
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server { return s.mcpServer }

// Run serves one session over transport until ctx ends or the peer disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	s.logger.Info("mcp server running", zap.String("name", serverName), zap.String("version", serverVersion))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// RunStdio serves over stdin/stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the streamable HTTP transport. Every HTTP session shares
// the same server and therefore the same game.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}
