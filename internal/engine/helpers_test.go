package engine

import (
	"errors"
	"sort"
	"testing"
)

func mustParseFEN(t *testing.T, fen string) *Board {
	t.Helper()
	board, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return board
}

// play applies coordinate moves in order and fails the test on the first one
// that does not complete.
func play(t *testing.T, board *Board, moves ...string) *Board {
	t.Helper()
	for _, uci := range moves {
		move := CreateMoveFromUCI(board, uci)
		if move.IsNull() {
			t.Fatalf("%s: no such move on\n%s", uci, board)
		}
		transition := board.CurrentPlayer().MakeMove(move)
		if !transition.Status.IsDone() {
			t.Fatalf("%s: %s", uci, transition.Status)
		}
		board = transition.Board
	}
	return board
}

// legalUCI returns the sorted moves of the side to move that complete.
func legalUCI(board *Board) []string {
	var moves []string
	player := board.CurrentPlayer()
	for _, move := range player.LegalMoves() {
		if player.MakeMove(move).Status.IsDone() {
			moves = append(moves, move.UCI())
		}
	}
	sort.Strings(moves)
	return moves
}

func destinations(moves []Move) []Square {
	var squares []Square
	for _, move := range moves {
		squares = append(squares, move.DestinationCoordinate())
	}
	sortSquares(squares)
	return squares
}

func moveKinds(moves []Move) []MoveKind {
	var out []MoveKind
	for _, move := range moves {
		out = append(out, move.Kind())
	}
	return out
}

func sortSquares(squares []Square) {
	sort.Slice(squares, func(i, j int) bool { return squares[i] < squares[j] })
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want %v", r, target)
		}
	}()
	fn()
}
