package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/chess-mcp/internal/board"
	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/presenter"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

const (
	ToolNewGame      = "new_game"
	ToolMakeMove     = "make_move"
	ToolGetGameState = "get_game_state"
)

var ErrUnknownCommand = errors.New("unknown command")

// Session is the slice of session.Holder the dispatcher drives.
type Session interface {
	Reset(ctx context.Context) session.Snapshot
	Current() (session.Snapshot, error)
	Apply(ctx context.Context, text string) (session.MoveResult, error)
}

// ImageRenderer draws a board as PNG. *board.Renderer satisfies it.
type ImageRenderer interface {
	PNG(ctx context.Context, b rules.Board, opts board.PNGOptions) ([]byte, error)
}

// Result is the outcome of one command. Text is always set; State is set on
// success and Err on failure.
type Result struct {
	Text  string
	State *chessdto.GameState
	Image []byte
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithImages attaches a PNG of the board to successful results.
func WithImages(r ImageRenderer) Option {
	return func(d *Dispatcher) { d.images = r }
}

type Dispatcher struct {
	session   Session
	catalog   *msgcat.Catalog
	formatter *presenter.Formatter
	images    ImageRenderer
	logger    *zap.Logger
}

func New(sess Session, catalog *msgcat.Catalog, opts ...Option) (*Dispatcher, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if catalog == nil {
		return nil, errors.New("message catalog is required")
	}
	if err := catalog.Require(RequiredKeys()...); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		session:   sess,
		catalog:   catalog,
		formatter: presenter.NewFormatter(catalog),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// RequiredKeys lists every catalog entry the dispatcher and its formatter render.
func RequiredKeys() []string {
	keys := []string{
		"tool.new_game.started",
		"tool.make_move.played",
		"error.no_active_game",
		"error.empty_input",
		"error.illegal_move",
		"error.unknown_command",
		"error.internal",
	}
	return append(keys, presenter.RequiredKeys()...)
}

func (d *Dispatcher) NewGame(ctx context.Context) Result {
	snap := d.session.Reset(ctx)
	header := d.render("tool.new_game.started", nil)
	return d.success(ctx, header, snap)
}

func (d *Dispatcher) MakeMove(ctx context.Context, move string) Result {
	res, err := d.session.Apply(ctx, move)
	if err != nil {
		return d.failure(err)
	}
	header := d.render("tool.make_move.played", map[string]any{"Move": res.Input})
	return d.success(ctx, header, res.Snapshot)
}

func (d *Dispatcher) GameState(ctx context.Context) Result {
	snap, err := d.session.Current()
	if err != nil {
		return d.failure(err)
	}
	return d.success(ctx, "", snap)
}

// Execute routes a named command. A missing or non-string move argument is
// treated as empty input.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) Result {
	switch strings.TrimSpace(name) {
	case ToolNewGame:
		return d.NewGame(ctx)
	case ToolMakeMove:
		move, _ := args["move"].(string)
		return d.MakeMove(ctx, move)
	case ToolGetGameState:
		return d.GameState(ctx)
	default:
		return Result{
			Text: d.render("error.unknown_command", map[string]any{"Name": name}),
			Err:  fmt.Errorf("%w: %q", ErrUnknownCommand, name),
		}
	}
}

func (d *Dispatcher) success(ctx context.Context, header string, snap session.Snapshot) Result {
	text := d.formatter.State(snap)
	if header != "" {
		text = header + "\n\n" + text
	}
	state := d.formatter.DTO(snap)
	out := Result{Text: text, State: &state}
	if d.images != nil {
		img, err := d.images.PNG(ctx, snap.Board, board.PNGOptions{
			Highlight: snap.LastStep,
			Caption:   d.formatter.Caption(snap),
		})
		if err != nil {
			d.logger.Warn("board image render failed", zap.String("game_id", snap.GameID), zap.Error(err))
		} else {
			out.Image = img
		}
	}
	return out
}

func (d *Dispatcher) failure(err error) Result {
	var illegal *session.IllegalMoveError
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return Result{Text: d.render("error.empty_input", nil), Err: err}
	case errors.Is(err, session.ErrNoActiveGame):
		return Result{Text: d.render("error.no_active_game", nil), Err: err}
	case errors.As(err, &illegal):
		return Result{Text: d.render("error.illegal_move", map[string]any{"Move": illegal.Text}), Err: err}
	default:
		d.logger.Error("chess command failed", zap.Error(err))
		return Result{Text: d.render("error.internal", map[string]any{"Message": err.Error()}), Err: err}
	}
}

// render falls back to the key itself; New has already checked every key exists.
func (d *Dispatcher) render(key string, data any) string {
	text, err := d.catalog.Render(key, data)
	if err != nil {
		d.logger.Warn("message render failed", zap.String("key", key), zap.Error(err))
		return key
	}
	return text
}
