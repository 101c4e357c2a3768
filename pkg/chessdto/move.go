package chessdto

import "time"

const (
	EventGameStarted = "game_started"
	EventMovePlayed  = "move_played"
)

// GameEvent is published after every successful new_game and make_move.
type GameEvent struct {
	Type     string    `json:"type"`
	GameID   string    `json:"game_id"`
	Ply      int       `json:"ply"`
	SAN      string    `json:"san,omitempty"`
	UCI      string    `json:"uci,omitempty"`
	Notation string    `json:"notation,omitempty"`
	FEN      string    `json:"fen"`
	Turn     string    `json:"turn"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}
