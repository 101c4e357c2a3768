package presenter

import (
	"fmt"
	"strings"

	"github.com/park285/chess-mcp/internal/board"
	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
	"github.com/park285/chess-mcp/pkg/chessdto"
)

const noMove = "none"

// Formatter renders session snapshots into the text block shown to clients.
type Formatter struct {
	catalog *msgcat.Catalog
}

func NewFormatter(catalog *msgcat.Catalog) *Formatter {
	return &Formatter{catalog: catalog}
}

// RequiredKeys lists the catalog entries the formatter renders.
func RequiredKeys() []string {
	return []string{
		"status.ongoing",
		"status.check",
		"status.checkmate",
		"status.stalemate",
		"status.draw",
		"caption.turn",
		"caption.finished",
	}
}

// State renders the full game block: board, captures, last move, turn,
// status, move count, opening and FEN.
func (f *Formatter) State(s session.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("Current Board:\n")
	if line := capturedLine(s.CapturedWhite); line != "" {
		sb.WriteString(fmt.Sprintf("Captured white pieces: %s\n", line))
	}
	sb.WriteString(board.Text(s.Board))
	sb.WriteByte('\n')
	if line := capturedLine(s.CapturedBlack); line != "" {
		sb.WriteString(fmt.Sprintf("Captured black pieces: %s\n", line))
	}
	sb.WriteByte('\n')

	last, ok := s.LastMove()
	if !ok {
		last = noMove
	}
	sb.WriteString(fmt.Sprintf("Last move: %s\n", last))
	sb.WriteString(fmt.Sprintf("Turn: %s\n", s.Turn))
	sb.WriteString(fmt.Sprintf("Status: %s\n", f.Status(s.Outcome)))
	sb.WriteString(fmt.Sprintf("Moves played: %d\n", s.MoveCount()))
	if s.OpeningName != "" {
		sb.WriteString(fmt.Sprintf("Opening: %s %s\n", s.OpeningECO, s.OpeningName))
	}
	sb.WriteString(fmt.Sprintf("FEN: %s", s.FEN))
	return sb.String()
}

// Status returns the human status phrase for o.
func (f *Formatter) Status(o rules.Outcome) string {
	switch o.Status {
	case rules.Check:
		return f.render("status.check", nil, "Check!")
	case rules.Checkmate:
		return f.render("status.checkmate", map[string]any{"Winner": o.Winner.String()},
			fmt.Sprintf("Checkmate! %s wins!", o.Winner))
	case rules.Draw:
		if o.Reason == rules.Stalemate {
			return f.render("status.stalemate", nil, "Stalemate - Draw")
		}
		return f.render("status.draw", map[string]any{"Reason": o.Reason.String()},
			fmt.Sprintf("Draw - %s", o.Reason))
	default:
		return f.render("status.ongoing", nil, "Ongoing")
	}
}

// Caption is the one-line summary drawn above board images.
func (f *Formatter) Caption(s session.Snapshot) string {
	if s.Outcome.Status.Terminal() {
		status := f.Status(s.Outcome)
		return f.render("caption.finished", map[string]any{"Status": status}, status)
	}
	return f.render("caption.turn", map[string]any{"Turn": s.Turn.String()}, fmt.Sprintf("%s to move", s.Turn))
}

// DTO converts s to its JSON read model.
func (f *Formatter) DTO(s session.Snapshot) chessdto.GameState {
	state := chessdto.GameState{
		GameID:    s.GameID,
		FEN:       s.FEN,
		Turn:      strings.ToLower(s.Turn.String()),
		Status:    s.Outcome.Status.String(),
		MoveCount: s.MoveCount(),
		MovesSAN:  append([]string{}, s.MovesSAN...),
		MovesUCI:  append([]string{}, s.MovesUCI...),
		Captured: chessdto.CapturedPieces{
			White: glyphList(s.CapturedWhite),
			Black: glyphList(s.CapturedBlack),
		},
		Board:     board.Rows(s.Board),
		StartedAt: s.StartedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if last, ok := s.LastMove(); ok {
		state.LastMove = last
	}
	if s.Outcome.Status == rules.Checkmate {
		state.Winner = strings.ToLower(s.Outcome.Winner.String())
	}
	if s.Outcome.Reason != rules.NoReason {
		state.StatusDetail = strings.ToLower(s.Outcome.Reason.String())
	}
	if s.OpeningName != "" {
		state.Opening = &chessdto.Opening{ECO: s.OpeningECO, Name: s.OpeningName}
	}
	return state
}

func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil || f.catalog == nil {
		return fallback
	}
	text, err := f.catalog.Render(key, data)
	if err != nil {
		return fallback
	}
	return text
}

func capturedLine(pieces []rules.Piece) string {
	return strings.Join(glyphList(pieces), " ")
}

func glyphList(pieces []rules.Piece) []string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, string(board.Glyph(p)))
	}
	return out
}
