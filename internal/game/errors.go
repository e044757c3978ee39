package game

import "errors"

var (
	ErrInvalidGameType = errors.New("invalid game type")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrGameOver        = errors.New("game is over")
)
