package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w Kq - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			board := mustParseFEN(t, fen)
			if diff := cmp.Diff(fen, board.FEN()); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFENDefaults(t *testing.T) {
	board := mustParseFEN(t, "4k3/8/8/8/8/8/8/4K3")
	if got := board.CurrentPlayer().Alliance(); got != White {
		t.Errorf("side to move = %s", got)
	}
	if got := board.FEN(); got != "4k3/8/8/8/8/8/8/4K3 w - - 0 1" {
		t.Errorf("FEN = %s", got)
	}
}

func TestParseFENMovedFlags(t *testing.T) {
	board := mustParseFEN(t, "r3k2r/8/8/8/4P3/8/P7/R3K2R w Kq - 0 1")

	tests := []struct {
		square Square
		moved  bool
	}{
		{60, false}, // white king keeps K
		{63, false},
		{56, true},
		{4, false},
		{0, false},
		{7, true},
		{48, false}, // a2 pawn on its start rank
		{36, true},
	}
	for _, tt := range tests {
		piece, ok := board.Tile(tt.square).Piece()
		if !ok {
			t.Fatalf("%s is empty", tt.square)
		}
		if piece.HasMoved != tt.moved {
			t.Errorf("%s HasMoved = %v, want %v", tt.square, piece.HasMoved, tt.moved)
		}
	}
}

func TestParseFENEnPassant(t *testing.T) {
	board := mustParseFEN(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 1")
	pawn, ok := board.EnPassantPawn()
	if !ok || pawn.Square != 29 || pawn.Alliance != Black {
		t.Fatalf("en passant pawn = %+v, %v; want black f5", pawn, ok)
	}
	if move := CreateMoveFromUCI(board, "e5f6"); move.Kind() != MoveKindPawnEnPassant {
		t.Errorf("e5f6 kind = %s", move.Kind())
	}
	if move := CreateMoveFromUCI(board, "e5d6"); !move.IsNull() {
		t.Errorf("e5d6 kind = %s, want none", move.Kind())
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"no kings", "8/8/8/8/8/8/8/8 w - - 0 1"},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"long rank", "rnbqkbnrr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"digit overflow", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"pawn on back rank", "P3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"bad side to move", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"bad castling", "4k3/8/8/8/8/8/8/4K3 w KX - 0 1"},
		{"bad en passant square", "4k3/8/8/8/8/8/8/4K3 w - e9 0 1"},
		{"en passant without pawn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1"},
		{"en passant on wrong rank", "4k3/8/8/8/4P3/8/8/4K3 w - e3 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := ParseFEN(tt.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Fatalf("ParseFEN(%q) error = %v, want %v", tt.fen, err, ErrInvalidFEN)
			}
			if board != nil {
				t.Error("board returned with an error")
			}
		})
	}
}

func TestFENWithClocks(t *testing.T) {
	board := play(t, NewStartingBoard(), "g1f3")
	want := "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1"
	if got := board.FENWithClocks(1, 1); got != want {
		t.Errorf("FENWithClocks = %s, want %s", got, want)
	}
}
