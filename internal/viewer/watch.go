package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-mcp/pkg/chessdto"
)

// Watcher follows the spectator event stream and reconnects with backoff
// when the connection drops.
type Watcher struct {
	wsURL                string
	maxReconnectAttempts int
	logger               *zap.Logger
}

func NewWatcher(wsURL string, maxReconnectAttempts int, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{wsURL: wsURL, maxReconnectAttempts: maxReconnectAttempts, logger: logger}
}

// WebSocketURL derives the /ws address from a spectator base URL.
func WebSocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if !strings.HasSuffix(u, "/ws") {
		u += "/ws"
	}
	return u
}

// Watch calls fn for each event until ctx ends. It returns nil on
// cancellation and an error once reconnect attempts are exhausted.
func (w *Watcher) Watch(ctx context.Context, fn func(chessdto.GameEvent)) error {
	failures := 0
	for {
		err := w.session(ctx, fn, func() { failures = 0 })
		if ctx.Err() != nil {
			return nil
		}
		failures++
		if failures > w.maxReconnectAttempts {
			return fmt.Errorf("watch %s: %w", w.wsURL, err)
		}
		w.logger.Warn("spectator stream lost", zap.Int("attempt", failures), zap.Error(err))
		if sleepErr := sleepWithContext(ctx, backoffDuration(failures)); sleepErr != nil {
			return nil
		}
	}
}

func (w *Watcher) session(ctx context.Context, fn func(chessdto.GameEvent), connected func()) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, w.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "close")
	connected()
	w.logger.Info("spectator stream connected", zap.String("url", w.wsURL))

	for {
		var ev chessdto.GameEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return errors.New("server closed stream")
			}
			return err
		}
		fn(ev)
	}
}
