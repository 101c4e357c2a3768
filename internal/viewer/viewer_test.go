package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/presenter"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/internal/spectate"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

func newSpectator(t *testing.T) (*session.Holder, *spectate.Hub, *httptest.Server) {
	t.Helper()
	hub := spectate.NewHub(8, nil)
	holder, err := session.New(rules.NewCorentings(), session.WithSink(hub))
	require.NoError(t, err)
	catalog, err := msgcat.New("")
	require.NoError(t, err)
	h, err := spectate.NewHandler(holder, presenter.NewFormatter(catalog), hub)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
	})
	return holder, hub, srv
}

func TestClientState(t *testing.T) {
	holder, _, srv := newSpectator(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	_, err := c.StateText(ctx)
	assert.ErrorIs(t, err, ErrNoActiveGame)

	holder.Reset(ctx)
	_, err = holder.Apply(ctx, "Nf3")
	require.NoError(t, err)

	text, err := c.StateText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Last move: Nf3")

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.MoveCount)
	assert.Equal(t, []string{"g1f3"}, state.MovesUCI)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("Current Board:"))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL).StateText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Current Board:", text)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"images_disabled","message":"board images are disabled"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).BoardPNG(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board images are disabled")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/ws", WebSocketURL("http://localhost:8080/"))
	assert.Equal(t, "wss://chess.example/ws", WebSocketURL("https://chess.example"))
	assert.Equal(t, "ws://h/ws", WebSocketURL("ws://h/ws"))
}

func TestWatcherReceivesEvents(t *testing.T) {
	holder, hub, srv := newSpectator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan chessdto.GameEvent, 4)
	done := make(chan error, 1)
	w := NewWatcher(WebSocketURL(srv.URL), 0, nil)
	go func() {
		done <- w.Watch(ctx, func(ev chessdto.GameEvent) { events <- ev })
	}()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	holder.Reset(ctx)
	_, err := holder.Apply(ctx, "e2e4")
	require.NoError(t, err)

	var got []string
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("events so far: %s", strings.Join(got, ","))
		}
	}
	assert.Equal(t, []string{chessdto.EventGameStarted, chessdto.EventMovePlayed}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatcherGivesUp(t *testing.T) {
	w := NewWatcher("ws://127.0.0.1:1/ws", 1, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, w.Watch(ctx, func(chessdto.GameEvent) {}))
}
