// Package cli defines the cobra commands of the chess-mcp binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/park285/chess-mcp/internal/obslog"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "chess-mcp",
	Short: "Chess over the Model Context Protocol",
	Long: `chess-mcp serves a single chess game to an LLM client through three MCP tools:
new_game, make_move and get_game_state. It can also play the same game from a
terminal and follow a running server from another process.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := obslog.InitFromEnv(); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	err := rootCmd.Execute()
	_ = obslog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(watchCmd)
}
