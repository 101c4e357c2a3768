package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

// EventSink receives game events in the order the holder applied them.
type EventSink interface {
	Publish(ctx context.Context, ev chessdto.GameEvent) error
}

type Option func(*Holder)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Holder) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithSink(sink EventSink) Option {
	return func(h *Holder) { h.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(h *Holder) {
		if now != nil {
			h.now = now
		}
	}
}

// Holder owns the single active game of the process. All methods are safe
// for concurrent use; moves are applied in the order callers acquire the lock.
type Holder struct {
	mu     sync.Mutex
	engine rules.Engine
	game   *game
	sink   EventSink
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type game struct {
	id            string
	pos           rules.Position
	san           []string
	uci           []string
	capturedWhite []rules.Piece
	capturedBlack []rules.Piece
	last          *rules.Step
	startedAt     time.Time
	updatedAt     time.Time
}

// Snapshot is a copy of the active game; it does not change when the holder does.
type Snapshot struct {
	GameID        string
	Position      rules.Position
	Board         rules.Board
	FEN           string
	Turn          rules.Color
	Outcome       rules.Outcome
	MovesSAN      []string
	MovesUCI      []string
	CapturedWhite []rules.Piece
	CapturedBlack []rules.Piece
	LastStep      *rules.Step
	OpeningECO    string
	OpeningName   string
	StartedAt     time.Time
	UpdatedAt     time.Time
}

func (s Snapshot) MoveCount() int { return len(s.MovesSAN) }

// LastMove returns the SAN of the most recent move.
func (s Snapshot) LastMove() (string, bool) {
	if len(s.MovesSAN) == 0 {
		return "", false
	}
	return s.MovesSAN[len(s.MovesSAN)-1], true
}

type MoveResult struct {
	Input    string
	SAN      string
	UCI      string
	Notation Notation
	Captured rules.Piece
	Snapshot Snapshot
}

func New(engine rules.Engine, opts ...Option) (*Holder, error) {
	if engine == nil {
		return nil, errors.New("rules engine is required")
	}
	h := &Holder{
		engine: engine,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Reset discards the active game, if any, and starts a new one from the
// standard position.
func (h *Holder) Reset(ctx context.Context) Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	prev := ""
	if h.game != nil {
		prev = h.game.id
	}
	h.game = &game{
		id:        h.newID(),
		pos:       h.engine.NewStandardPosition(),
		startedAt: now,
		updatedAt: now,
	}
	snap := h.snapshotLocked()
	h.logger.Info("chess game started",
		zap.String("game_id", snap.GameID),
		zap.String("replaced_game_id", prev),
	)
	h.publishLocked(ctx, chessdto.GameEvent{Type: chessdto.EventGameStarted}, snap)
	return snap
}

func (h *Holder) Current() (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.game == nil {
		return Snapshot{}, ErrNoActiveGame
	}
	return h.snapshotLocked(), nil
}

// Apply plays text on the active game. It tries UCI first, then SAN. On any
// error the game is left as it was.
func (h *Holder) Apply(ctx context.Context, text string) (MoveResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return MoveResult{}, ErrEmptyInput
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.game
	if g == nil {
		return MoveResult{}, ErrNoActiveGame
	}

	parsed := Resolve(h.engine, g.pos, text)
	if !parsed.OK() {
		h.logger.Debug("chess move rejected",
			zap.String("game_id", g.id),
			zap.String("move", text),
		)
		return MoveResult{}, &IllegalMoveError{Text: text, Tried: parsed.Tried}
	}

	mv := parsed.Move
	san := h.engine.SANOf(mv, g.pos)
	captured := h.capturedBy(g.pos, mv)

	next, err := h.engine.Apply(g.pos, mv)
	if err != nil {
		// parsed moves are legal, so this is an engine fault
		h.logger.Error("chess move apply failed",
			zap.String("game_id", g.id),
			zap.String("move", text),
			zap.Error(err),
		)
		return MoveResult{}, &IllegalMoveError{Text: text, Tried: parsed.Tried}
	}

	g.pos = next
	g.san = append(g.san, san)
	g.uci = append(g.uci, mv.UCI())
	g.last = &rules.Step{From: mv.From(), To: mv.To()}
	g.updatedAt = h.now()
	switch captured.Color {
	case rules.White:
		g.capturedWhite = append(g.capturedWhite, captured)
	case rules.Black:
		g.capturedBlack = append(g.capturedBlack, captured)
	}

	snap := h.snapshotLocked()
	h.logger.Info("chess move played",
		zap.String("game_id", g.id),
		zap.String("move", text),
		zap.String("san", san),
		zap.String("notation", string(parsed.Notation)),
		zap.Int("ply", len(g.san)),
		zap.String("status", snap.Outcome.Status.String()),
	)
	h.publishLocked(ctx, chessdto.GameEvent{
		Type:     chessdto.EventMovePlayed,
		SAN:      san,
		UCI:      mv.UCI(),
		Notation: string(parsed.Notation),
	}, snap)

	return MoveResult{
		Input:    text,
		SAN:      san,
		UCI:      mv.UCI(),
		Notation: parsed.Notation,
		Captured: captured,
		Snapshot: snap,
	}, nil
}

// capturedBy returns the piece mv removes from pos, including en passant.
func (h *Holder) capturedBy(pos rules.Position, mv rules.Move) rules.Piece {
	from, to := mv.From(), mv.To()
	if target := h.engine.PieceAt(pos, to); !target.IsEmpty() {
		return target
	}
	mover := h.engine.PieceAt(pos, from)
	if mover.Kind == rules.Pawn && from.File != to.File {
		return h.engine.PieceAt(pos, rules.Square{File: to.File, Rank: from.Rank})
	}
	return rules.NoPiece
}

func (h *Holder) snapshotLocked() Snapshot {
	g := h.game
	snap := Snapshot{
		GameID:        g.id,
		Position:      g.pos,
		Board:         rules.BoardOf(h.engine, g.pos),
		FEN:           h.engine.FEN(g.pos),
		Turn:          h.engine.Turn(g.pos),
		Outcome:       h.engine.Status(g.pos),
		MovesSAN:      append([]string{}, g.san...),
		MovesUCI:      append([]string{}, g.uci...),
		CapturedWhite: append([]rules.Piece{}, g.capturedWhite...),
		CapturedBlack: append([]rules.Piece{}, g.capturedBlack...),
		StartedAt:     g.startedAt,
		UpdatedAt:     g.updatedAt,
	}
	if g.last != nil {
		step := *g.last
		snap.LastStep = &step
	}
	if eco, name, ok := h.engine.Opening(g.pos); ok {
		snap.OpeningECO = eco
		snap.OpeningName = name
	}
	return snap
}

func (h *Holder) publishLocked(ctx context.Context, ev chessdto.GameEvent, snap Snapshot) {
	if h.sink == nil {
		return
	}
	ev.GameID = snap.GameID
	ev.Ply = snap.MoveCount()
	ev.FEN = snap.FEN
	ev.Turn = strings.ToLower(snap.Turn.String())
	ev.Status = snap.Outcome.Status.String()
	ev.At = snap.UpdatedAt
	if err := h.sink.Publish(ctx, ev); err != nil {
		h.logger.Warn("chess event publish failed",
			zap.String("game_id", ev.GameID),
			zap.String("event", ev.Type),
			zap.Error(err),
		)
	}
}
