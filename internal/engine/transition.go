package engine

type MoveStatus int

const (
	MoveStatusDone MoveStatus = iota
	MoveStatusIllegalMove
	MoveStatusLeavesPlayerInCheck
)

func (s MoveStatus) IsDone() bool {
	return s == MoveStatusDone
}

func (s MoveStatus) String() string {
	switch s {
	case MoveStatusDone:
		return "done"
	case MoveStatusIllegalMove:
		return "illegal move"
	case MoveStatusLeavesPlayerInCheck:
		return "leaves player in check"
	}
	return "unknown"
}

// MoveTransition is the outcome of Player.MakeMove. Move is the candidate
// that was matched, or the move as given when nothing matched.
type MoveTransition struct {
	Board  *Board
	Move   Move
	Status MoveStatus
}
