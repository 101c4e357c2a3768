package mcpserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-mcp/internal/dispatch"
	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	holder, err := session.New(rules.NewCorentings())
	require.NoError(t, err)
	catalog, err := msgcat.New("")
	require.NoError(t, err)
	d, err := dispatch.New(holder, catalog)
	require.NoError(t, err)
	s, err := New(d)
	require.NoError(t, err)
	return s
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	return tc.Text
}

func TestNewRequiresCommands(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestListTools(t *testing.T) {
	cs := connect(t, newServer(t))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"new_game", "make_move", "get_game_state"}, names)
}

func TestToolsPlayAGame(t *testing.T) {
	cs := connect(t, newServer(t))

	before := call(t, cs, "get_game_state", nil)
	assert.True(t, before.IsError)
	assert.Contains(t, text(t, before), "new_game")

	started := call(t, cs, "new_game", nil)
	assert.False(t, started.IsError)
	assert.True(t, strings.HasPrefix(text(t, started), "New game started!"))

	for _, mv := range []string{"e4", "e5"} {
		res := call(t, cs, "make_move", map[string]any{"move": mv})
		require.False(t, res.IsError, text(t, res))
	}

	state := call(t, cs, "get_game_state", nil)
	require.False(t, state.IsError)
	body := text(t, state)
	assert.Contains(t, body, "Last move: e5")
	assert.Contains(t, body, "Moves played: 2")
	assert.Contains(t, body, "Status: Ongoing")

	structured, ok := state.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content is %T", state.StructuredContent)
	assert.EqualValues(t, 2, structured["move_count"])
	assert.Equal(t, "white", structured["turn"])
}

func TestMakeMoveErrorsAreToolErrors(t *testing.T) {
	cs := connect(t, newServer(t))
	call(t, cs, "new_game", nil)

	illegal := call(t, cs, "make_move", map[string]any{"move": "e2e5"})
	assert.True(t, illegal.IsError)
	assert.Contains(t, text(t, illegal), "'e2e5'")

	empty := call(t, cs, "make_move", map[string]any{"move": ""})
	assert.True(t, empty.IsError)
	assert.Equal(t, "Error: Move parameter is required", text(t, empty))
}

func TestHTTPHandler(t *testing.T) {
	s := newServer(t)
	srv := httptest.NewServer(s.HTTPHandler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: srv.URL}, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "new_game"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Current Board:")
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
