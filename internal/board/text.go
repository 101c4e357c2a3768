package board

import (
	"strconv"
	"strings"

	"github.com/park285/chess-mcp/internal/rules"
)

// EmptySquare marks an unoccupied cell in the text grid.
const EmptySquare = '⭘'

const fileLabels = "  a b c d e f g h"

var glyphs = map[rules.Color]map[rules.Kind]rune{
	rules.White: {
		rules.King:   '♔',
		rules.Queen:  '♕',
		rules.Rook:   '♖',
		rules.Bishop: '♗',
		rules.Knight: '♘',
		rules.Pawn:   '♙',
	},
	rules.Black: {
		rules.King:   '♚',
		rules.Queen:  '♛',
		rules.Rook:   '♜',
		rules.Bishop: '♝',
		rules.Knight: '♞',
		rules.Pawn:   '♟',
	},
}

// Glyph returns the Unicode chess symbol for p, or EmptySquare.
func Glyph(p rules.Piece) rune {
	if g, ok := glyphs[p.Color][p.Kind]; ok {
		return g
	}
	return EmptySquare
}

// Text renders b from White's side: ranks 8 to 1 top to bottom, files a to h
// left to right, followed by the file legend. No trailing newline.
func Text(b rules.Board) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(strconv.Itoa(rank + 1))
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			sb.WriteRune(Glyph(b[rank][file]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fileLabels)
	return sb.String()
}

// Rows returns the rank lines of Text without the legend, rank 8 first.
func Rows(b rules.Board) []string {
	lines := strings.Split(Text(b), "\n")
	return lines[:8]
}
