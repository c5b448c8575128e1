package engine

type PieceType int

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// promotionTypes is the order promotion candidates are generated in.
var promotionTypes = [...]PieceType{Queen, Rook, Bishop, Knight}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "unknown"
}

// Notation is the algebraic piece letter; pawns have none.
func (t PieceType) Notation() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func ParsePieceType(s string) (PieceType, bool) {
	switch s {
	case "pawn", "p", "P":
		return Pawn, true
	case "knight", "n", "N":
		return Knight, true
	case "bishop", "b", "B":
		return Bishop, true
	case "rook", "r", "R":
		return Rook, true
	case "queen", "q", "Q":
		return Queen, true
	case "king", "k", "K":
		return King, true
	}
	return Pawn, false
}

// Piece is an immutable value. Moving a piece produces a new value at the
// destination; nothing ever changes a Piece in place.
type Piece struct {
	Type     PieceType
	Square   Square
	Alliance Alliance
	HasMoved bool
}

func NewPiece(t PieceType, sq Square, alliance Alliance) Piece {
	return Piece{Type: t, Square: sq, Alliance: alliance}
}

var (
	bishopOffsets = []int{-9, -7, 7, 9}
	rookOffsets   = []int{-8, -1, 1, 8}
	queenOffsets  = []int{-9, -8, -7, -1, 1, 7, 8, 9}
	kingOffsets   = queenOffsets
	knightOffsets = []int{-17, -15, -10, -6, 6, 10, 15, 17}
)

// CalculateLegalMoves returns the pseudo-legal moves of the piece: they follow
// its geometry and capture rules but may still leave the own king attacked.
// Castling is not included; the Player adds castle candidates.
func (p Piece) CalculateLegalMoves(board *Board) []Move {
	switch p.Type {
	case Pawn:
		return p.pawnMoves(board)
	case Knight:
		return p.stepMoves(board, knightOffsets, isKnightExclusion)
	case Bishop:
		return p.slideMoves(board, bishopOffsets)
	case Rook:
		return p.slideMoves(board, rookOffsets)
	case Queen:
		return p.slideMoves(board, queenOffsets)
	case King:
		return p.stepMoves(board, kingOffsets, isEdgeExclusion)
	}
	return nil
}

// MovedTo returns the piece as it stands after move: relocated, marked as
// moved and retyped if the move promotes.
func (p Piece) MovedTo(move Move) Piece {
	moved := Piece{Type: p.Type, Square: move.destination, Alliance: p.Alliance, HasMoved: true}
	if move.IsPromotion() {
		moved.Type = move.promotion
	}
	return moved
}

func (p Piece) slideMoves(board *Board, offsets []int) []Move {
	var moves []Move
	for _, offset := range offsets {
		candidate := p.Square
		for {
			if isEdgeExclusion(candidate, offset) {
				break
			}
			candidate += Square(offset)
			if !IsValidSquare(candidate) {
				break
			}
			occupant, occupied := board.Tile(candidate).Piece()
			if !occupied {
				moves = append(moves, newStandardMove(board, p, candidate))
				continue
			}
			if occupant.Alliance != p.Alliance {
				moves = append(moves, newCaptureMove(board, p, candidate, occupant))
			}
			break
		}
	}
	return moves
}

func (p Piece) stepMoves(board *Board, offsets []int, excluded func(Square, int) bool) []Move {
	var moves []Move
	for _, offset := range offsets {
		if excluded(p.Square, offset) {
			continue
		}
		candidate := p.Square + Square(offset)
		if !IsValidSquare(candidate) {
			continue
		}
		occupant, occupied := board.Tile(candidate).Piece()
		if !occupied {
			moves = append(moves, newStandardMove(board, p, candidate))
		} else if occupant.Alliance != p.Alliance {
			moves = append(moves, newCaptureMove(board, p, candidate, occupant))
		}
	}
	return moves
}

// isEdgeExclusion covers the one-file offsets shared by kings, sliders and
// pawn strikes.
func isEdgeExclusion(sq Square, offset int) bool {
	if FirstColumn[sq] && (offset == -9 || offset == -1 || offset == 7) {
		return true
	}
	return EighthColumn[sq] && (offset == -7 || offset == 1 || offset == 9)
}

func isKnightExclusion(sq Square, offset int) bool {
	switch {
	case FirstColumn[sq] && (offset == -17 || offset == -10 || offset == 6 || offset == 15):
		return true
	case SecondColumn[sq] && (offset == -10 || offset == 6):
		return true
	case SeventhColumn[sq] && (offset == -6 || offset == 10):
		return true
	case EighthColumn[sq] && (offset == -15 || offset == -6 || offset == 10 || offset == 17):
		return true
	}
	return false
}
