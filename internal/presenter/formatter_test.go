package presenter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-mcp/internal/msgcat"
	"github.com/park285/chess-mcp/internal/rules"
	"github.com/park285/chess-mcp/internal/session"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	catalog, err := msgcat.New("")
	require.NoError(t, err)
	require.NoError(t, catalog.Require(RequiredKeys()...))
	return NewFormatter(catalog)
}

func play(t *testing.T, moves ...string) session.Snapshot {
	t.Helper()
	h, err := session.New(rules.NewCorentings())
	require.NoError(t, err)
	snap := h.Reset(context.Background())
	for _, mv := range moves {
		res, err := h.Apply(context.Background(), mv)
		require.NoError(t, err, mv)
		snap = res.Snapshot
	}
	return snap
}

func TestStateStartingPosition(t *testing.T) {
	f := newFormatter(t)
	text := f.State(play(t))

	want := "Current Board:\n" +
		"8 ♜ ♞ ♝ ♛ ♚ ♝ ♞ ♜\n" +
		"7 ♟ ♟ ♟ ♟ ♟ ♟ ♟ ♟\n" +
		"6 ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘\n" +
		"5 ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘\n" +
		"4 ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘\n" +
		"3 ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘ ⭘\n" +
		"2 ♙ ♙ ♙ ♙ ♙ ♙ ♙ ♙\n" +
		"1 ♖ ♘ ♗ ♕ ♔ ♗ ♘ ♖\n" +
		"  a b c d e f g h\n" +
		"\n" +
		"Last move: none\n" +
		"Turn: White\n" +
		"Status: Ongoing\n" +
		"Moves played: 0\n" +
		"FEN: rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	assert.Equal(t, want, text)
}

func TestStateAfterCaptures(t *testing.T) {
	f := newFormatter(t)
	text := f.State(play(t, "e4", "d5", "exd5", "Qxd5"))

	assert.Contains(t, text, "Captured white pieces: ♙\n")
	assert.Contains(t, text, "Captured black pieces: ♟\n")
	assert.Contains(t, text, "Last move: Qxd5\n")
	assert.Contains(t, text, "Turn: White\n")
	assert.Contains(t, text, "Moves played: 4\n")
	assert.Contains(t, text, "Opening: B01 ")
	assert.True(t, strings.HasPrefix(text, "Current Board:\nCaptured white pieces"))
}

func TestStatusPhrases(t *testing.T) {
	f := newFormatter(t)
	cases := map[string]rules.Outcome{
		"Ongoing":                       {Status: rules.Ongoing},
		"Check!":                        {Status: rules.Check},
		"Checkmate! Black wins!":        {Status: rules.Checkmate, Winner: rules.Black},
		"Stalemate - Draw":              {Status: rules.Draw, Reason: rules.Stalemate},
		"Draw - Insufficient material":  {Status: rules.Draw, Reason: rules.InsufficientMaterial},
		"Draw - Threefold repetition":   {Status: rules.Draw, Reason: rules.ThreefoldRepetition},
		"Draw - Fifty move rule":        {Status: rules.Draw, Reason: rules.FiftyMoveRule},
		"Draw - Seventy-five move rule": {Status: rules.Draw, Reason: rules.SeventyFiveMoveRule},
	}
	for want, outcome := range cases {
		assert.Equal(t, want, f.Status(outcome))
	}
}

func TestStatusFallsBackWithoutCatalog(t *testing.T) {
	f := NewFormatter(nil)
	assert.Equal(t, "Checkmate! White wins!", f.Status(rules.Outcome{Status: rules.Checkmate, Winner: rules.White}))
	assert.Equal(t, "Ongoing", f.Status(rules.Outcome{}))
}

func TestDTOFoolsMate(t *testing.T) {
	f := newFormatter(t)
	snap := play(t, "f3", "e5", "g4", "Qh4#")
	dto := f.DTO(snap)

	assert.Equal(t, snap.GameID, dto.GameID)
	assert.Equal(t, "checkmate", dto.Status)
	assert.Equal(t, "black", dto.Winner)
	assert.Equal(t, "white", dto.Turn)
	assert.Equal(t, "Qh4#", dto.LastMove)
	assert.Equal(t, 4, dto.MoveCount)
	assert.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, dto.MovesUCI)
	assert.Len(t, dto.Board, 8)
	assert.Empty(t, dto.Captured.White)
	assert.Equal(t, "Checkmate! Black wins!", f.Caption(snap))
}

func TestCaptionOngoing(t *testing.T) {
	f := newFormatter(t)
	assert.Equal(t, "Black to move", f.Caption(play(t, "e4")))
}
