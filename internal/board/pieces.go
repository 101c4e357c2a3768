package board

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/chess-mcp/internal/rules"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

// One outline per kind; color is applied by colorizeSVG.
var pieceAssets = map[rules.Kind]string{
	rules.King:   "assets/pieces/K.svg",
	rules.Queen:  "assets/pieces/Q.svg",
	rules.Rook:   "assets/pieces/R.svg",
	rules.Bishop: "assets/pieces/B.svg",
	rules.Knight: "assets/pieces/N.svg",
	rules.Pawn:   "assets/pieces/P.svg",
}

type glyphKey struct {
	piece rules.Piece
	size  int
}

// glyphCache holds rasterized pieces by glyphKey.
var glyphCache sync.Map

func renderPieceImage(piece rules.Piece, size int) (image.Image, error) {
	key := glyphKey{piece: piece, size: size}
	if img, ok := glyphCache.Load(key); ok {
		return img.(image.Image), nil
	}

	name, ok := pieceAssets[piece.Kind]
	if !ok {
		return nil, fmt.Errorf("no asset for piece kind %d", piece.Kind)
	}
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(colorizeSVG(data, piece.Color)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	icon.SetTarget(0, 0, float64(size), float64(size))
	icon.Draw(rasterx.NewDasher(size, size, rasterx.NewScannerGV(size, size, img, img.Bounds())), 1.0)

	actual, _ := glyphCache.LoadOrStore(key, image.Image(img))
	return actual.(image.Image), nil
}
