package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/park285/chess-mcp/internal/viewer"
)

var (
	stateAddr string
	stateJSON bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the current game from a running server",
	RunE:  runState,
}

func runState(cmd *cobra.Command, _ []string) error {
	client := viewer.NewClient(stateAddr)
	out := cmd.OutOrStdout()

	if stateJSON {
		state, err := client.State(cmd.Context())
		if err != nil {
			return stateError(err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	text, err := client.StateText(cmd.Context())
	if err != nil {
		return stateError(err)
	}
	fmt.Fprintln(out, text)
	return nil
}

func stateError(err error) error {
	if errors.Is(err, viewer.ErrNoActiveGame) {
		return fmt.Errorf("no active game; start one with new_game")
	}
	return fmt.Errorf("fetch state: %w", err)
}

func init() {
	stateCmd.Flags().StringVar(&stateAddr, "addr", "http://localhost:8080", "spectator base URL")
	stateCmd.Flags().BoolVar(&stateJSON, "json", false, "print the JSON state instead of the board text")
}
