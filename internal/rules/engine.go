package rules

import "fmt"

// Color is the side owning a piece or the side to move.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return ""
	}
}

// Other returns the opposing side.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

type Piece struct {
	Color Color
	Kind  Kind
}

var NoPiece = Piece{}

func (p Piece) IsEmpty() bool { return p.Kind == NoKind }

// Square addresses a board cell; File 0..7 is a..h and Rank 0..7 is 1..8.
type Square struct {
	File int
	Rank int
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File, s.Rank+1)
}

// Step is the origin and destination of a played move.
type Step struct {
	From Square
	To   Square
}

type Status uint8

const (
	Ongoing Status = iota
	Check
	Checkmate
	Draw
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Terminal reports whether no further moves are expected.
func (s Status) Terminal() bool { return s == Checkmate || s == Draw }

// Reason qualifies a drawn position.
type Reason uint8

const (
	NoReason Reason = iota
	Stalemate
	InsufficientMaterial
	FiftyMoveRule
	SeventyFiveMoveRule
	ThreefoldRepetition
	FivefoldRepetition
)

func (r Reason) String() string {
	switch r {
	case Stalemate:
		return "Stalemate"
	case InsufficientMaterial:
		return "Insufficient material"
	case FiftyMoveRule:
		return "Fifty move rule"
	case SeventyFiveMoveRule:
		return "Seventy-five move rule"
	case ThreefoldRepetition:
		return "Threefold repetition"
	case FivefoldRepetition:
		return "Fivefold repetition"
	default:
		return ""
	}
}

// Outcome is the classification of a position. Winner is set only for
// Checkmate and Reason only for Draw.
type Outcome struct {
	Status Status
	Winner Color
	Reason Reason
}

// Position is an engine-owned board state. Implementations must treat it as
// immutable once returned.
type Position interface {
	String() string
}

// Move is an engine-owned move that is legal in the position it was parsed from.
type Move interface {
	From() Square
	To() Square
	UCI() string
}

// Engine is the capability set the session needs from a chess rules library.
type Engine interface {
	NewStandardPosition() Position
	// ParseUCI and ParseSAN succeed only for moves legal in pos.
	ParseUCI(text string, pos Position) (Move, bool)
	ParseSAN(text string, pos Position) (Move, bool)
	Apply(pos Position, mv Move) (Position, error)
	Status(pos Position) Outcome
	SANOf(mv Move, pos Position) string
	PieceAt(pos Position, sq Square) Piece
	Turn(pos Position) Color
	FEN(pos Position) string
	// Opening names the opening line that led to pos, when the book knows it.
	Opening(pos Position) (eco, name string, ok bool)
}

// Board is a piece grid indexed [rank][file] with rank 0 being rank 1.
type Board [8][8]Piece

// BoardOf reads every square of pos through e.
func BoardOf(e Engine, pos Position) Board {
	var b Board
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			b[rank][file] = e.PieceAt(pos, Square{File: file, Rank: rank})
		}
	}
	return b
}

// At returns the piece on sq, or NoPiece for squares off the board.
func (b Board) At(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b[sq.Rank][sq.File]
}
