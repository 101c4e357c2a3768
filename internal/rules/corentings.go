package rules

import (
	"errors"
	"fmt"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var errForeignValue = errors.New("rules: value was not produced by this engine")

// Corentings implements Engine on top of github.com/corentings/chess/v2.
type Corentings struct {
	book *opening.BookECO
}

func NewCorentings() *Corentings {
	return &Corentings{book: opening.NewBookECO()}
}

type position struct {
	game *nchess.Game
}

func (p *position) String() string { return p.game.FEN() }

type move struct {
	mv  nchess.Move
	uci string
}

func (m *move) From() Square { return squareFrom(m.mv.S1()) }
func (m *move) To() Square   { return squareFrom(m.mv.S2()) }
func (m *move) UCI() string  { return m.uci }

func (e *Corentings) NewStandardPosition() Position {
	return &position{game: nchess.NewGame()}
}

func (e *Corentings) ParseUCI(text string, pos Position) (Move, bool) {
	p, ok := pos.(*position)
	if !ok || !plausibleUCI(text) {
		return nil, false
	}
	cur := p.game.Position()
	mv, err := nchess.UCINotation{}.Decode(cur, text)
	if err != nil || mv == nil {
		return nil, false
	}
	return legalMatch(cur, mv)
}

func (e *Corentings) ParseSAN(text string, pos Position) (Move, bool) {
	p, ok := pos.(*position)
	if !ok || text == "" {
		return nil, false
	}
	cur := p.game.Position()
	mv, err := nchess.AlgebraicNotation{}.Decode(cur, text)
	if err != nil || mv == nil {
		return nil, false
	}
	return legalMatch(cur, mv)
}

func (e *Corentings) Apply(pos Position, mv Move) (Position, error) {
	p, ok := pos.(*position)
	if !ok {
		return nil, errForeignValue
	}
	m, ok := mv.(*move)
	if !ok {
		return nil, errForeignValue
	}
	next := p.game.Clone()
	played := m.mv
	if err := next.Move(&played, nil); err != nil {
		return nil, fmt.Errorf("apply %s: %w", m.uci, err)
	}
	return &position{game: next}, nil
}

func (e *Corentings) Status(pos Position) Outcome {
	p, ok := pos.(*position)
	if !ok {
		return Outcome{}
	}
	g := p.game
	switch g.Method() {
	case nchess.Checkmate:
		winner := White
		if g.Outcome() == nchess.BlackWon {
			winner = Black
		}
		return Outcome{Status: Checkmate, Winner: winner}
	case nchess.Stalemate:
		return Outcome{Status: Draw, Reason: Stalemate}
	case nchess.InsufficientMaterial:
		return Outcome{Status: Draw, Reason: InsufficientMaterial}
	case nchess.SeventyFiveMoveRule:
		return Outcome{Status: Draw, Reason: SeventyFiveMoveRule}
	case nchess.FivefoldRepetition:
		return Outcome{Status: Draw, Reason: FivefoldRepetition}
	case nchess.ThreefoldRepetition:
		return Outcome{Status: Draw, Reason: ThreefoldRepetition}
	case nchess.FiftyMoveRule:
		return Outcome{Status: Draw, Reason: FiftyMoveRule}
	}

	// claimable draws count as drawn positions
	for _, method := range g.EligibleDraws() {
		switch method {
		case nchess.ThreefoldRepetition:
			return Outcome{Status: Draw, Reason: ThreefoldRepetition}
		case nchess.FiftyMoveRule:
			return Outcome{Status: Draw, Reason: FiftyMoveRule}
		}
	}

	if moves := g.Moves(); len(moves) > 0 && moves[len(moves)-1].HasTag(nchess.Check) {
		return Outcome{Status: Check}
	}
	return Outcome{Status: Ongoing}
}

func (e *Corentings) SANOf(mv Move, pos Position) string {
	p, ok := pos.(*position)
	if !ok {
		return ""
	}
	m, ok := mv.(*move)
	if !ok {
		return ""
	}
	played := m.mv
	return nchess.AlgebraicNotation{}.Encode(p.game.Position(), &played)
}

func (e *Corentings) PieceAt(pos Position, sq Square) Piece {
	p, ok := pos.(*position)
	if !ok || !sq.Valid() {
		return NoPiece
	}
	return pieceFrom(p.game.Position().Board().Piece(squareTo(sq)))
}

func (e *Corentings) Turn(pos Position) Color {
	p, ok := pos.(*position)
	if !ok {
		return NoColor
	}
	return colorFrom(p.game.Position().Turn())
}

func (e *Corentings) FEN(pos Position) string {
	p, ok := pos.(*position)
	if !ok {
		return ""
	}
	return p.game.FEN()
}

func (e *Corentings) Opening(pos Position) (string, string, bool) {
	p, ok := pos.(*position)
	if !ok || e.book == nil {
		return "", "", false
	}
	moves := p.game.Moves()
	if len(moves) == 0 {
		return "", "", false
	}
	eco := e.book.Find(moves)
	if eco == nil {
		return "", "", false
	}
	return eco.Code(), eco.Title(), true
}

// legalMatch returns the legal move from cur with the same squares and
// promotion as mv. The legal move carries the check and capture tags the
// notation decoders may not set.
func legalMatch(cur *nchess.Position, mv *nchess.Move) (Move, bool) {
	for _, candidate := range cur.ValidMoves() {
		if candidate.S1() != mv.S1() || candidate.S2() != mv.S2() || candidate.Promo() != mv.Promo() {
			continue
		}
		return &move{mv: candidate, uci: nchess.UCINotation{}.Encode(cur, &candidate)}, true
	}
	return nil, false
}

func plausibleUCI(text string) bool {
	if len(text) != 4 && len(text) != 5 {
		return false
	}
	for i := 0; i < 4; i += 2 {
		if text[i] < 'a' || text[i] > 'h' || text[i+1] < '1' || text[i+1] > '8' {
			return false
		}
	}
	if len(text) == 5 {
		switch text[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}

func squareFrom(sq nchess.Square) Square {
	return Square{File: int(sq.File()), Rank: int(sq.Rank())}
}

func squareTo(sq Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.File), nchess.Rank(sq.Rank))
}

func colorFrom(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	default:
		return NoColor
	}
}

func pieceFrom(p nchess.Piece) Piece {
	if p == nchess.NoPiece {
		return NoPiece
	}
	var kind Kind
	switch p.Type() {
	case nchess.King:
		kind = King
	case nchess.Queen:
		kind = Queen
	case nchess.Rook:
		kind = Rook
	case nchess.Bishop:
		kind = Bishop
	case nchess.Knight:
		kind = Knight
	case nchess.Pawn:
		kind = Pawn
	default:
		return NoPiece
	}
	return Piece{Color: colorFrom(p.Color()), Kind: kind}
}
