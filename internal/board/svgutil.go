package board

import (
	"bytes"

	"github.com/park285/chess-mcp/internal/rules"
)

var (
	fillPlaceholder   = []byte("PIECE_FILL")
	strokePlaceholder = []byte("PIECE_STROKE")
)

type pieceColors struct {
	fill   string
	stroke string
}

var piecePalette = map[rules.Color]pieceColors{
	rules.White: {fill: "#fbf8f0", stroke: "#1c1c1c"},
	rules.Black: {fill: "#262421", stroke: "#d9d4c7"},
}

// colorizeSVG fills the glyph template placeholders for c.
func colorizeSVG(svg []byte, c rules.Color) []byte {
	colors, ok := piecePalette[c]
	if !ok {
		colors = piecePalette[rules.White]
	}
	out := bytes.ReplaceAll(svg, fillPlaceholder, []byte(colors.fill))
	out = bytes.ReplaceAll(out, strokePlaceholder, []byte(colors.stroke))
	return sanitizeSVG(out)
}

// sanitizeSVG normalises style spellings oksvg does not parse.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill:000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: 000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: 000000"), []byte("stroke:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	return fixed
}
