package session

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveGame = errors.New("no active game")
	ErrEmptyInput   = errors.New("move text is empty")
	ErrIllegalMove  = errors.New("illegal move")
)

// IllegalMoveError carries the rejected move text and the notations that were tried.
type IllegalMoveError struct {
	Text  string
	Tried []Notation
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q", e.Text)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }
