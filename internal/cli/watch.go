package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/park285/chess-mcp/internal/feed"
	"github.com/park285/chess-mcp/internal/obslog"
	"github.com/park285/chess-mcp/internal/viewer"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

var (
	watchAddr    string
	watchRedis   string
	watchChannel string
	watchRetries int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream game events from a running server",
	Long: `Print one line per game event. Events come from the spectator WebSocket at
--addr, or from the Redis channel when --redis is given.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	show := func(ev chessdto.GameEvent) { writeEvent(out, ev) }

	if watchRedis != "" {
		r, err := feed.NewRedis(ctx, watchRedis, feed.WithChannel(watchChannel), feed.WithLogger(obslog.L()))
		if err != nil {
			return err
		}
		defer r.Close()
		if last, err := r.Last(ctx); err == nil && last != nil {
			show(*last)
		}
		return r.Subscribe(ctx, show)
	}

	w := viewer.NewWatcher(viewer.WebSocketURL(watchAddr), watchRetries, obslog.L())
	return w.Watch(ctx, show)
}

func writeEvent(out io.Writer, ev chessdto.GameEvent) {
	switch ev.Type {
	case chessdto.EventMovePlayed:
		fmt.Fprintf(out, "%s  %-11s game=%s ply=%d %s (%s) turn=%s status=%s\n",
			ev.At.Format("15:04:05"), ev.Type, ev.GameID, ev.Ply, ev.SAN, ev.UCI, ev.Turn, ev.Status)
	default:
		fmt.Fprintf(out, "%s  %-11s game=%s\n", ev.At.Format("15:04:05"), ev.Type, ev.GameID)
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "http://localhost:8080", "spectator base URL")
	watchCmd.Flags().StringVar(&watchRedis, "redis", "", "Redis URL; subscribe to the event channel instead of the WebSocket")
	watchCmd.Flags().StringVar(&watchChannel, "channel", feed.DefaultChannel, "Redis channel")
	watchCmd.Flags().IntVar(&watchRetries, "retries", 5, "reconnect attempts before giving up")
}
