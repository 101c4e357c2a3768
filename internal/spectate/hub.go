package spectate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-mcp/pkg/chessdto"
)

const defaultBuffer = 32

// Hub fans game events out to WebSocket spectators. Publish never blocks: a
// subscriber whose buffer is full is disconnected.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan chessdto.GameEvent
	nextID int
	buffer int
	closed bool
	logger *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[int]chan chessdto.GameEvent),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a spectator. The returned channel is closed when the
// spectator is dropped, unsubscribed or the hub closes.
func (h *Hub) Subscribe() (<-chan chessdto.GameEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan chessdto.GameEvent, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.nextID++
	id := h.nextID
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) Publish(_ context.Context, ev chessdto.GameEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, id)
			close(ch)
			h.logger.Warn("spectator dropped", zap.Int("subscriber", id), zap.String("game_id", ev.GameID))
		}
	}
	return nil
}

// Len reports the number of connected spectators.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	return nil
}
