package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-mcp/internal/board"
	"github.com/park285/chess-mcp/internal/presenter"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

const writeTimeout = 5 * time.Second

// StateSource is the read side of the session holder.
type StateSource interface {
	Current() (session.Snapshot, error)
}

type ImageRenderer interface {
	PNG(ctx context.Context, b rules.Board, opts board.PNGOptions) ([]byte, error)
}

// Handler serves read-only views of the active game.
type Handler struct {
	source    StateSource
	formatter *presenter.Formatter
	hub       *Hub
	images    ImageRenderer
	logger    *zap.Logger
	mux       *http.ServeMux
}

type Option func(*Handler)

func WithImages(r ImageRenderer) Option {
	return func(h *Handler) { h.images = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(source StateSource, formatter *presenter.Formatter, hub *Hub, opts ...Option) (*Handler, error) {
	if source == nil {
		return nil, errors.New("state source is required")
	}
	if formatter == nil {
		return nil, errors.New("formatter is required")
	}
	if hub == nil {
		return nil, errors.New("hub is required")
	}
	h := &Handler{
		source:    source,
		formatter: formatter,
		hub:       hub,
		logger:    zap.NewNop(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Register(h.mux)
	return h, nil
}

// Register adds the spectator routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /state", h.stateText)
	mux.HandleFunc("GET /state.json", h.stateJSON)
	mux.HandleFunc("GET /board.png", h.boardPNG)
	mux.HandleFunc("GET /ws", h.watch)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) stateText(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.formatter.State(snap)))
}

func (h *Handler) stateJSON(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.formatter.DTO(snap))
}

func (h *Handler) boardPNG(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeJSON(w, http.StatusNotFound, chessdto.DomainError{Code: "images_disabled", Message: "board images are disabled"})
		return
	}
	snap, ok := h.current(w)
	if !ok {
		return
	}
	img, err := h.images.PNG(r.Context(), snap.Board, board.PNGOptions{
		Highlight: snap.LastStep,
		Caption:   h.formatter.Caption(snap),
	})
	if err != nil {
		h.logger.Error("board image render failed", zap.String("game_id", snap.GameID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, chessdto.DomainError{Code: "render_failed", Message: err.Error(), Retryable: true})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

// watch streams GameEvents as JSON text frames until either side goes away.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		h.logger.Warn("spectator accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()
	h.logger.Info("spectator connected", zap.String("remote", r.RemoteAddr), zap.Int("spectators", h.hub.Len()))

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				h.logger.Debug("spectator write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) current(w http.ResponseWriter) (session.Snapshot, bool) {
	snap, err := h.source.Current()
	if errors.Is(err, session.ErrNoActiveGame) {
		writeJSON(w, http.StatusConflict, chessdto.DomainError{Code: "no_active_game", Message: "no active game"})
		return session.Snapshot{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, chessdto.DomainError{Code: "internal", Message: err.Error()})
		return session.Snapshot{}, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
