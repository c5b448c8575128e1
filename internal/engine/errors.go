package engine

import "errors"

var (
	// ErrInvalidCoordinate is raised (as a panic) for a tile lookup outside 0-63.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrMissingKing is raised (as a panic) when a board is built without
	// exactly one king per alliance.
	ErrMissingKing = errors.New("board requires exactly one king per alliance")

	// ErrNullMoveExecution is raised (as a panic) when the null move is executed.
	ErrNullMoveExecution = errors.New("cannot execute the null move")

	ErrInvalidFEN    = errors.New("invalid FEN string")
	ErrInvalidSquare = errors.New("invalid square")
)
