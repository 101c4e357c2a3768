package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-mcp/internal/dispatch"
	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	holder, err := session.New(rules.NewCorentings())
	require.NoError(t, err)
	catalog, err := msgcat.New("")
	require.NoError(t, err)
	d, err := dispatch.New(holder, catalog)
	require.NoError(t, err)
	return d
}

func TestPlayLoop(t *testing.T) {
	in := strings.NewReader("new\n\nmove e4\nmake_move e7e5\nmove e2e5\nstate\nresign\nquit\nmove d4\n")
	var out bytes.Buffer

	require.NoError(t, playLoop(context.Background(), newDispatcher(t), in, &out))
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "> New game started!"))
	assert.Contains(t, text, "Move e4 played successfully!")
	assert.Contains(t, text, "Move e7e5 played successfully!")
	assert.Contains(t, text, "Error: Illegal move 'e2e5'")
	assert.Contains(t, text, "Moves played: 2")
	assert.Contains(t, text, "Error: Unknown tool 'resign'")
	assert.NotContains(t, text, "Move d4 played")
}

func TestPlayLoopEndsAtEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, playLoop(context.Background(), newDispatcher(t), strings.NewReader("state"), &out))
	assert.Contains(t, out.String(), "No active game")
}

func TestParsePlayLine(t *testing.T) {
	name, args := parsePlayLine("move  O-O ")
	assert.Equal(t, dispatch.ToolMakeMove, name)
	assert.Equal(t, map[string]any{"move": "O-O"}, args)

	name, args = parsePlayLine("get_game_state")
	assert.Equal(t, dispatch.ToolGetGameState, name)
	assert.Nil(t, args)
}

func TestWriteEvent(t *testing.T) {
	var out bytes.Buffer
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	writeEvent(&out, chessdto.GameEvent{Type: chessdto.EventGameStarted, GameID: "g1", At: at})
	writeEvent(&out, chessdto.GameEvent{Type: chessdto.EventMovePlayed, GameID: "g1", Ply: 1, SAN: "e4", UCI: "e2e4", Turn: "black", Status: "ongoing", At: at})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "09:30:00  game_started game=g1", lines[0])
	assert.Equal(t, "09:30:00  move_played game=g1 ply=1 e4 (e2e4) turn=black status=ongoing", lines[1])
}
