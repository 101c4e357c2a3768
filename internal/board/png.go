package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/chess-mcp/internal/rules"
)

type PNGOptions struct {
	// Highlight marks the squares of the last move.
	Highlight *rules.Step
	// Caption is drawn in a panel above the board when non-empty.
	Caption string
}

// Renderer draws boards as PNG images. It is safe for concurrent use.
type Renderer struct {
	squareSize int
}

func NewRenderer() *Renderer {
	return &Renderer{squareSize: 64}
}

const (
	boardSquares  = 8
	sideMargin    = 28
	topMargin     = 64
	bottomMargin  = 28
	captionHeight = 30
	captionGap    = 14
	panelRadius   = 10
	captionPadX   = 18
	shadowOffsetY = 4
)

var (
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	backgroundColor         = color.RGBA{22, 24, 34, 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralHighlightArrow   = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	captionPanelColor       = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	captionShadowColor      = color.NRGBA{0, 0, 0, 50}
	captionTextColor        = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	boardShadowColor        = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func (r *Renderer) PNG(ctx context.Context, b rules.Board, opts PNGOptions) ([]byte, error) {
	squareSize := r.squareSize
	boardSize := squareSize * boardSquares
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawCaption(img, opts.Caption, boardRect)
	drawBoardShadow(img, boardRect)
	drawSquares(img, squareSize, origin)
	drawHighlight(img, b, opts.Highlight, squareSize, origin)
	if err := drawPieces(img, b, squareSize, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, squareSize, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(
		boardRect.Min.X+4,
		boardRect.Min.Y+8,
		boardRect.Max.X+8,
		boardRect.Max.Y+10,
	)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for rank := 0; rank < boardSquares; rank++ {
		for file := 0; file < boardSquares; file++ {
			sq := rules.Square{File: file, Rank: rank}
			imagedraw.Draw(dst, squareRect(sq, squareSize, origin), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, b rules.Board, squareSize int, origin image.Point) error {
	for rank := 0; rank < boardSquares; rank++ {
		for file := 0; file < boardSquares; file++ {
			sq := rules.Square{File: file, Rank: rank}
			piece := b.At(sq)
			if piece.IsEmpty() {
				continue
			}
			glyph, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(sq, squareSize, origin), glyph, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawHighlight(img *image.RGBA, b rules.Board, step *rules.Step, squareSize int, origin image.Point) {
	if step == nil || !step.From.Valid() || !step.To.Valid() {
		return
	}
	switch mover := b.At(step.To).Color; mover {
	case rules.Black:
		drawArrow(img, step.From, step.To, squareSize, origin, blackMoveHighlightArrow)
	case rules.White:
		drawSquareOverlay(img, step.From, squareSize, origin, whiteMoveHighlightFill)
		drawSquareOverlay(img, step.To, squareSize, origin, whiteMoveHighlightFill)
	default:
		drawArrow(img, step.From, step.To, squareSize, origin, neutralHighlightArrow)
	}
}

func drawCaption(img *image.RGBA, caption string, boardRect image.Rectangle) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return
	}
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	width := drawer.MeasureString(caption).Round() + captionPadX*2
	if width > boardRect.Dx() {
		width = boardRect.Dx()
		caption = truncateWithEllipsis(face, caption, width-captionPadX*2)
	}
	bottom := boardRect.Min.Y - captionGap
	left := boardRect.Min.X + (boardRect.Dx()-width)/2
	rect := image.Rect(left, bottom-captionHeight, left+width, bottom)

	drawRoundedPanel(img, rect.Add(image.Pt(0, shadowOffsetY)), panelRadius, captionShadowColor)
	drawRoundedPanel(img, rect, panelRadius, captionPanelColor)
	drawCenteredString(drawer, rect, caption, captionTextColor)
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  dst,
		Face: face,
		Src:  image.NewUniform(coordinateTextColor),
	}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + boardSquares*squareSize

	for row := 0; row < boardSquares; row++ {
		rankCenter := origin.Y + row*squareSize + squareSize/2
		drawCenteredText(drawer, strconv.Itoa(boardSquares-row), origin.X-sideMargin/2, rankCenter+ascent/2)
	}
	for col := 0; col < boardSquares; col++ {
		fileCenter := origin.X + col*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('a'+col)), fileCenter, boardEndY+ascent+4)
	}
}

func drawSquareOverlay(img *image.RGBA, sq rules.Square, squareSize int, origin image.Point, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, from, to rules.Square, squareSize int, origin image.Point, clr color.Color) {
	if from == to {
		return
	}
	startRect := squareRect(from, squareSize, origin)
	endRect := squareRect(to, squareSize, origin)
	start := image.Pt(startRect.Min.X+squareSize/2, startRect.Min.Y+squareSize/2)
	end := image.Pt(endRect.Min.X+squareSize/2, endRect.Min.Y+squareSize/2)

	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	dirX := dx / length
	dirY := dy / length
	perpX := -dirY
	perpY := dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.18
	headWidth := float64(squareSize) * 0.32

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{X: float64(start.X) - perpX*halfWidth, Y: float64(start.Y) - perpY*halfWidth},
		pointF{X: float64(start.X) + perpX*halfWidth, Y: float64(start.Y) + perpY*halfWidth},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{X: float64(end.X), Y: float64(end.Y)},
		pointF{X: baseX - perpX*headWidth/2, Y: baseY - perpY*headWidth/2},
		pointF{X: baseX + perpX*headWidth/2, Y: baseY + perpY*headWidth/2},
		clr,
	)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq rules.Square, squareSize int, origin image.Point) image.Rectangle {
	row := 7 - sq.Rank
	x := origin.X + sq.File*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq rules.Square) color.Color {
	if (sq.File+sq.Rank)%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
