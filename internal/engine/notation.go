package engine

import (
	"fmt"
	"strings"
)

// String returns the algebraic name of the square, "a8" for 0 and "h1" for 63.
func (sq Square) String() string {
	if !IsValidSquare(sq) {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.File(), sq.Rank())
}

func (sq Square) fileNotation() string {
	return fmt.Sprintf("%c", 'a'+sq.File())
}

func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return -1, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '0')
	return Square((NumTilesPerRow-rank)*NumTilesPerRow + file), nil
}

// UCI returns the coordinate form of the move, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	uci := m.CurrentCoordinate().String() + m.destination.String()
	if m.IsPromotion() {
		uci += strings.ToLower(m.promotion.Notation())
	}
	return uci
}

// String returns the short algebraic form of the move without a check suffix.
func (m Move) String() string {
	switch m.kind {
	case MoveKindNull:
		return "--"
	case MoveKindKingSideCastle:
		return "O-O"
	case MoveKindQueenSideCastle:
		return "O-O-O"
	}

	var sb strings.Builder
	if m.piece.Type == Pawn {
		if m.IsAttack() {
			sb.WriteString(m.piece.Square.fileNotation())
		}
	} else {
		sb.WriteString(m.piece.Type.Notation())
		sb.WriteString(m.disambiguation())
	}
	if m.IsAttack() {
		sb.WriteByte('x')
	}
	sb.WriteString(m.destination.String())
	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteString(m.promotion.Notation())
	}
	return sb.String()
}

// disambiguation names the origin file, rank or both when another piece of
// the same type can also legally reach the destination.
func (m Move) disambiguation() string {
	if m.board == nil {
		return ""
	}
	player := m.board.player(m.piece.Alliance)
	var sameFile, sameRank, ambiguous bool
	for _, other := range player.legalMoves {
		if other.piece.Type != m.piece.Type || other.piece.Square == m.piece.Square ||
			other.destination != m.destination || other.IsCastlingMove() {
			continue
		}
		if !player.MakeMove(other).Status.IsDone() {
			continue
		}
		ambiguous = true
		if other.piece.Square.File() == m.piece.Square.File() {
			sameFile = true
		}
		if other.piece.Square.Rank() == m.piece.Square.Rank() {
			sameRank = true
		}
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return m.piece.Square.fileNotation()
	case !sameRank:
		return fmt.Sprintf("%d", m.piece.Square.Rank())
	}
	return m.piece.Square.String()
}
