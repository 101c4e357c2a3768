package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/park285/chess-mcp/internal/dispatch"
)

// NewGameInput takes no arguments.
type NewGameInput struct{}

// MakeMoveInput is the make_move argument record.
type MakeMoveInput struct {
	Move string `json:"move" jsonschema:"The move to make in UCI format (e.g., 'e2e4') or SAN format (e.g., 'e4', 'Nf3')"`
}

// GameStateInput takes no arguments.
type GameStateInput struct{}

func NewGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        dispatch.ToolNewGame,
		Description: "Start a new chess game. This will reset the current game board to the initial position.",
	}
}

func MakeMoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name: dispatch.ToolMakeMove,
		Description: "Make a chess move. Validates the move and applies it if legal. " +
			"Accepts moves in UCI format (e.g., 'e2e4', 'e7e5', 'e1g1' for castling) " +
			"or Standard Algebraic Notation (e.g., 'e4', 'Nf3', 'O-O' for castling). " +
			"Returns the updated board state after the move.",
	}
}

func GameStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name: dispatch.ToolGetGameState,
		Description: "Get the current state of the chess game. Returns the board position with " +
			"Unicode chess pieces and rank/file labels, captured pieces for each side, " +
			"last move played, whose turn it is, game status, and FEN notation.",
	}
}

func NewGameHandler(cmds Commands) mcp.ToolHandlerFor[NewGameInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NewGameInput) (*mcp.CallToolResult, any, error) {
		return toolResult(cmds.NewGame(ctx))
	}
}

func MakeMoveHandler(cmds Commands) mcp.ToolHandlerFor[MakeMoveInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MakeMoveInput) (*mcp.CallToolResult, any, error) {
		return toolResult(cmds.MakeMove(ctx, input.Move))
	}
}

func GameStateHandler(cmds Commands) mcp.ToolHandlerFor[GameStateInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GameStateInput) (*mcp.CallToolResult, any, error) {
		return toolResult(cmds.GameState(ctx))
	}
}

// toolResult reports command failures as tool errors, never as protocol
// errors, so the client can show the text to the model.
func toolResult(r dispatch.Result) (*mcp.CallToolResult, any, error) {
	content := []mcp.Content{&mcp.TextContent{Text: r.Text}}
	if len(r.Image) > 0 {
		content = append(content, &mcp.ImageContent{Data: r.Image, MIMEType: "image/png"})
	}
	if r.Failed() {
		return &mcp.CallToolResult{Content: content, IsError: true}, nil, nil
	}
	if r.State == nil {
		return &mcp.CallToolResult{Content: content}, nil, nil
	}
	return &mcp.CallToolResult{Content: content}, r.State, nil
}
