package model

import "errors"

var (
	ErrGameFull          = errors.New("game is full")
	ErrNotInGame         = errors.New("player not in game")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrIllegalMove       = errors.New("illegal move")
	ErrLeavesKingInCheck = errors.New("move leaves king in check")
	ErrGameOver          = errors.New("game is over")
	ErrPlayerInQueue     = errors.New("player already in queue")
)
