package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/chess-mcp/internal/chessbuilder"
	"github.com/park285/chess-mcp/internal/config"
	"github.com/park285/chess-mcp/internal/dispatch"
	"github.com/park285/chess-mcp/internal/obslog"
)

const prompt = "> "

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal using the MCP tool names",
	Long: `Read commands from stdin and print the same text the MCP tools return.

  new_game | new          start a new game
  make_move <m> | move <m> play a move in UCI (e2e4) or SAN (e4, Nf3)
  get_game_state | state  show the board
  quit | exit             leave`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	deps, err := chessbuilder.New(cmd.Context(), cfg, obslog.L())
	if err != nil {
		return fmt.Errorf("chess init error: %w", err)
	}
	defer deps.Close()
	return playLoop(cmd.Context(), deps.Dispatcher, cmd.InOrStdin(), cmd.OutOrStdout())
}

type executor interface {
	Execute(ctx context.Context, name string, args map[string]any) dispatch.Result
}

var playAliases = map[string]string{
	"new":   dispatch.ToolNewGame,
	"move":  dispatch.ToolMakeMove,
	"state": dispatch.ToolGetGameState,
}

func playLoop(ctx context.Context, exec executor, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			fmt.Fprint(out, prompt)
			continue
		case "quit", "exit":
			return nil
		}
		name, args := parsePlayLine(line)
		res := exec.Execute(ctx, name, args)
		fmt.Fprintf(out, "%s\n\n%s", res.Text, prompt)
	}
	return scanner.Err()
}

func parsePlayLine(line string) (string, map[string]any) {
	fields := strings.Fields(line)
	name := fields[0]
	if alias, ok := playAliases[name]; ok {
		name = alias
	}
	if len(fields) == 1 {
		return name, nil
	}
	return name, map[string]any{"move": strings.Join(fields[1:], " ")}
}
