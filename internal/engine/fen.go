package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// StartingFEN is the FEN of NewStartingBoard.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a board from a FEN string. Castling rights become the moved
// flags of the kings and rooks on their home squares, and the en passant field
// names the pawn that just double-stepped. The clock fields are accepted but
// not kept: the engine does not track them.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 1 {
		return nil, fmt.Errorf("empty FEN string: %w", ErrInvalidFEN)
	}

	pieces, err := parsePiecePositions(parts[0])
	if err != nil {
		return nil, err
	}
	mover, err := parseSideToMove(parts)
	if err != nil {
		return nil, err
	}
	rights, err := parseCastlingRights(parts)
	if err != nil {
		return nil, err
	}
	applyMovedFlags(pieces, rights)

	builder := NewBuilder().SetMoveMaker(mover)
	kings := map[Alliance]int{}
	for _, piece := range pieces {
		if piece.Type == King {
			kings[piece.Alliance]++
		}
		builder.SetPiece(piece)
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("need one king per side, got %d white and %d black: %w",
			kings[White], kings[Black], ErrInvalidFEN)
	}

	if err := parseEnPassant(builder, pieces, mover, parts); err != nil {
		return nil, err
	}
	return builder.Build(), nil
}

func parsePiecePositions(positions string) (map[Square]Piece, error) {
	pieces := make(map[Square]Piece)
	rows := strings.Split(positions, "/")
	if len(rows) != NumTilesPerRow {
		return nil, fmt.Errorf("expected 8 ranks, got %d: %w", len(rows), ErrInvalidFEN)
	}
	for row, text := range rows {
		file := 0
		for _, c := range text {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			default:
				t, ok := ParsePieceType(string(c))
				if !ok {
					return nil, fmt.Errorf("invalid piece character: %c: %w", c, ErrInvalidFEN)
				}
				if file >= NumTilesPerRow {
					return nil, fmt.Errorf("rank %d overflows: %w", NumTilesPerRow-row, ErrInvalidFEN)
				}
				alliance := White
				if unicode.IsLower(c) {
					alliance = Black
				}
				sq := Square(row*NumTilesPerRow + file)
				if t == Pawn && (FirstRow[sq] || EighthRow[sq]) {
					return nil, fmt.Errorf("pawn on back rank %s: %w", sq, ErrInvalidFEN)
				}
				pieces[sq] = NewPiece(t, sq, alliance)
				file++
			}
		}
		if file != NumTilesPerRow {
			return nil, fmt.Errorf("rank %d has %d files: %w", NumTilesPerRow-row, file, ErrInvalidFEN)
		}
	}
	return pieces, nil
}

func parseSideToMove(parts []string) (Alliance, error) {
	if len(parts) < 2 {
		return White, nil
	}
	switch parts[1] {
	case "w":
		return White, nil
	case "b":
		return Black, nil
	}
	return White, fmt.Errorf("invalid side to move: %s: %w", parts[1], ErrInvalidFEN)
}

type castlingRights struct {
	whiteKing, whiteQueen, blackKing, blackQueen bool
}

func parseCastlingRights(parts []string) (castlingRights, error) {
	var rights castlingRights
	if len(parts) < 3 || parts[2] == "-" {
		return rights, nil
	}
	for _, c := range parts[2] {
		switch c {
		case 'K':
			rights.whiteKing = true
		case 'Q':
			rights.whiteQueen = true
		case 'k':
			rights.blackKing = true
		case 'q':
			rights.blackQueen = true
		default:
			return rights, fmt.Errorf("invalid castling field: %s: %w", parts[2], ErrInvalidFEN)
		}
	}
	return rights, nil
}

// applyMovedFlags marks every king and rook as moved unless a castling right
// keeps it on its home square unmoved. Pawns off their start rank count as moved.
func applyMovedFlags(pieces map[Square]Piece, rights castlingRights) {
	unmoved := map[Square]bool{
		60: rights.whiteKing || rights.whiteQueen,
		63: rights.whiteKing,
		56: rights.whiteQueen,
		4:  rights.blackKing || rights.blackQueen,
		7:  rights.blackKing,
		0:  rights.blackQueen,
	}
	for sq, piece := range pieces {
		switch piece.Type {
		case King, Rook:
			piece.HasMoved = !isCastlingHome(piece) || !unmoved[sq]
		case Pawn:
			piece.HasMoved = !piece.Alliance.isPawnStartSquare(sq)
		}
		pieces[sq] = piece
	}
}

func isCastlingHome(piece Piece) bool {
	switch {
	case piece.Type == King && piece.Alliance == White:
		return piece.Square == 60
	case piece.Type == King:
		return piece.Square == 4
	case piece.Alliance == White:
		return piece.Square == 56 || piece.Square == 63
	}
	return piece.Square == 0 || piece.Square == 7
}

func parseEnPassant(builder *Builder, pieces map[Square]Piece, mover Alliance, parts []string) error {
	if len(parts) < 4 || parts[3] == "-" {
		return nil
	}
	target, err := ParseSquare(parts[3])
	if err != nil {
		return fmt.Errorf("en passant field: %v: %w", err, ErrInvalidFEN)
	}
	if (mover == White && target.Row() != 2) || (mover == Black && target.Row() != 5) {
		return fmt.Errorf("en passant square %s on wrong rank: %w", parts[3], ErrInvalidFEN)
	}
	pawnSquare := target - Square(NumTilesPerRow*mover.Direction())
	pawn, ok := pieces[pawnSquare]
	if !ok || pawn.Type != Pawn || pawn.Alliance == mover {
		return fmt.Errorf("no pawn behind en passant square %s: %w", parts[3], ErrInvalidFEN)
	}
	builder.SetEnPassantPawn(pawn)
	return nil
}

// FEN returns the position with a zero halfmove clock and move number 1.
func (b *Board) FEN() string {
	return b.FENWithClocks(0, 1)
}

// FENWithClocks returns the position with the given clock fields, which the
// board does not track itself.
func (b *Board) FENWithClocks(halfmoveClock, fullmoveNumber int) string {
	var sb strings.Builder
	b.writePiecePositions(&sb)
	sb.WriteByte(' ')
	if b.currentPlayer.Alliance() == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	b.writeCastlingRights(&sb)
	sb.WriteByte(' ')
	if pawn, ok := b.EnPassantPawn(); ok {
		sb.WriteString((pawn.Square - Square(NumTilesPerRow*pawn.Alliance.Direction())).String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", halfmoveClock, fullmoveNumber)
	return sb.String()
}

func (b *Board) writePiecePositions(sb *strings.Builder) {
	for row := 0; row < NumTilesPerRow; row++ {
		empty := 0
		for file := 0; file < NumTilesPerRow; file++ {
			piece, ok := b.tiles[row*NumTilesPerRow+file].Piece()
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(fenLetter(piece))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < NumTilesPerRow-1 {
			sb.WriteByte('/')
		}
	}
}

func (b *Board) writeCastlingRights(sb *strings.Builder) {
	written := false
	for _, right := range []struct {
		letter     byte
		king, rook Square
		alliance   Alliance
	}{
		{'K', 60, 63, White},
		{'Q', 60, 56, White},
		{'k', 4, 7, Black},
		{'q', 4, 0, Black},
	} {
		if b.isUnmoved(right.king, King, right.alliance) && b.isUnmoved(right.rook, Rook, right.alliance) {
			sb.WriteByte(right.letter)
			written = true
		}
	}
	if !written {
		sb.WriteByte('-')
	}
}

func (b *Board) isUnmoved(sq Square, t PieceType, alliance Alliance) bool {
	piece, ok := b.tiles[sq].Piece()
	return ok && piece.Type == t && piece.Alliance == alliance && !piece.HasMoved
}

func fenLetter(piece Piece) byte {
	letter := piece.Type.Notation()
	if piece.Type == Pawn {
		letter = "P"
	}
	if piece.Alliance == Black {
		return strings.ToLower(letter)[0]
	}
	return letter[0]
}
