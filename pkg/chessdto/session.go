package chessdto

import "time"

// CapturedPieces lists captured piece glyphs in capture order. White holds
// white pieces taken by Black, Black holds black pieces taken by White.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// GameState is the read model of the active game.
type GameState struct {
	GameID       string         `json:"game_id"`
	FEN          string         `json:"fen"`
	Turn         string         `json:"turn"`
	Status       string         `json:"status"`
	StatusDetail string         `json:"status_detail,omitempty"`
	Winner       string         `json:"winner,omitempty"`
	LastMove     string         `json:"last_move,omitempty"`
	MoveCount    int            `json:"move_count"`
	MovesSAN     []string       `json:"moves_san"`
	MovesUCI     []string       `json:"moves_uci"`
	Captured     CapturedPieces `json:"captured"`
	Opening      *Opening       `json:"opening,omitempty"`
	Board        []string       `json:"board"`
	StartedAt    time.Time      `json:"started_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
