package engine

import "fmt"

type MoveKind int

const (
	MoveKindNull MoveKind = iota
	MoveKindStandard
	MoveKindCapture
	MoveKindPawnMove
	MoveKindPawnJump
	MoveKindPawnAttack
	MoveKindPawnEnPassant
	MoveKindPawnPromotion
	MoveKindPawnAttackPromotion
	MoveKindKingSideCastle
	MoveKindQueenSideCastle
)

func (k MoveKind) String() string {
	switch k {
	case MoveKindNull:
		return "null"
	case MoveKindStandard:
		return "standard"
	case MoveKindCapture:
		return "capture"
	case MoveKindPawnMove:
		return "pawn move"
	case MoveKindPawnJump:
		return "pawn jump"
	case MoveKindPawnAttack:
		return "pawn attack"
	case MoveKindPawnEnPassant:
		return "en passant"
	case MoveKindPawnPromotion:
		return "promotion"
	case MoveKindPawnAttackPromotion:
		return "attack promotion"
	case MoveKindKingSideCastle:
		return "king side castle"
	case MoveKindQueenSideCastle:
		return "queen side castle"
	}
	return fmt.Sprintf("MoveKind(%d)", int(k))
}

// Move describes the effect of a single ply on the board it was generated from.
type Move struct {
	kind        MoveKind
	board       *Board
	piece       Piece
	destination Square

	// capture and en passant kinds
	attacked Piece

	// promotion kinds
	promotion PieceType

	// castle kinds
	rook            Piece
	rookDestination Square
}

// NullMove is the "no such move" sentinel. It is never playable.
var NullMove = Move{kind: MoveKindNull, destination: -1, rookDestination: -1}

func newStandardMove(board *Board, piece Piece, destination Square) Move {
	return Move{kind: MoveKindStandard, board: board, piece: piece, destination: destination, rookDestination: -1}
}

func newCaptureMove(board *Board, piece Piece, destination Square, attacked Piece) Move {
	return Move{kind: MoveKindCapture, board: board, piece: piece, destination: destination, attacked: attacked, rookDestination: -1}
}

func newPawnMove(board *Board, piece Piece, destination Square) Move {
	return Move{kind: MoveKindPawnMove, board: board, piece: piece, destination: destination, rookDestination: -1}
}

func newPawnJump(board *Board, piece Piece, destination Square) Move {
	return Move{kind: MoveKindPawnJump, board: board, piece: piece, destination: destination, rookDestination: -1}
}

func newPawnAttackMove(board *Board, piece Piece, destination Square, attacked Piece) Move {
	return Move{kind: MoveKindPawnAttack, board: board, piece: piece, destination: destination, attacked: attacked, rookDestination: -1}
}

func newPawnEnPassantMove(board *Board, piece Piece, destination Square, attacked Piece) Move {
	return Move{kind: MoveKindPawnEnPassant, board: board, piece: piece, destination: destination, attacked: attacked, rookDestination: -1}
}

func newPawnPromotion(board *Board, piece Piece, destination Square, promotion PieceType) Move {
	return Move{kind: MoveKindPawnPromotion, board: board, piece: piece, destination: destination, promotion: promotion, rookDestination: -1}
}

func newPawnAttackPromotion(board *Board, piece Piece, destination Square, attacked Piece, promotion PieceType) Move {
	return Move{kind: MoveKindPawnAttackPromotion, board: board, piece: piece, destination: destination, attacked: attacked, promotion: promotion, rookDestination: -1}
}

func newCastleMove(kind MoveKind, board *Board, king Piece, destination Square, rook Piece, rookDestination Square) Move {
	return Move{kind: kind, board: board, piece: king, destination: destination, rook: rook, rookDestination: rookDestination}
}

func (m Move) Kind() MoveKind {
	return m.kind
}

// Board is the position the move was generated from.
func (m Move) Board() *Board {
	return m.board
}

func (m Move) MovedPiece() Piece {
	return m.piece
}

func (m Move) CurrentCoordinate() Square {
	if m.IsNull() {
		return -1
	}
	return m.piece.Square
}

func (m Move) DestinationCoordinate() Square {
	return m.destination
}

func (m Move) IsNull() bool {
	return m.kind == MoveKindNull
}

func (m Move) IsAttack() bool {
	switch m.kind {
	case MoveKindCapture, MoveKindPawnAttack, MoveKindPawnEnPassant, MoveKindPawnAttackPromotion:
		return true
	}
	return false
}

func (m Move) AttackedPiece() (Piece, bool) {
	return m.attacked, m.IsAttack()
}

func (m Move) IsPromotion() bool {
	return m.kind == MoveKindPawnPromotion || m.kind == MoveKindPawnAttackPromotion
}

// PromotionType is meaningful only when IsPromotion reports true.
func (m Move) PromotionType() PieceType {
	return m.promotion
}

func (m Move) IsCastlingMove() bool {
	return m.kind == MoveKindKingSideCastle || m.kind == MoveKindQueenSideCastle
}

func (m Move) CastleRook() (Piece, bool) {
	return m.rook, m.IsCastlingMove()
}

func (m Move) CastleRookStart() Square {
	if !m.IsCastlingMove() {
		return -1
	}
	return m.rook.Square
}

func (m Move) CastleRookDestination() Square {
	if !m.IsCastlingMove() {
		return -1
	}
	return m.rookDestination
}

// Equal reports whether two moves move the same piece to the same square,
// with the same promotion choice. The generating board is not compared.
func (m Move) Equal(other Move) bool {
	if m.IsNull() || other.IsNull() {
		return m.IsNull() && other.IsNull()
	}
	if m.IsPromotion() != other.IsPromotion() {
		return false
	}
	if m.IsPromotion() && m.promotion != other.promotion {
		return false
	}
	return m.piece == other.piece && m.destination == other.destination
}

// Execute builds the board that results from playing the move. It panics for
// the null move.
func (m Move) Execute() *Board {
	if m.IsNull() {
		panic(ErrNullMoveExecution)
	}
	alliance := m.piece.Alliance
	builder := NewBuilder()
	for _, piece := range m.board.pieces(alliance) {
		if piece == m.piece || (m.IsCastlingMove() && piece == m.rook) {
			continue
		}
		builder.SetPiece(piece)
	}
	for _, piece := range m.board.pieces(alliance.Opponent()) {
		if m.IsAttack() && piece == m.attacked {
			continue
		}
		builder.SetPiece(piece)
	}

	moved := m.piece.MovedTo(m)
	builder.SetPiece(moved)
	if m.IsCastlingMove() {
		builder.SetPiece(Piece{Type: Rook, Square: m.rookDestination, Alliance: alliance, HasMoved: true})
	}
	if m.kind == MoveKindPawnJump {
		builder.SetEnPassantPawn(moved)
	}
	builder.SetMoveMaker(alliance.Opponent())
	builder.SetTransitionMove(m)
	return builder.Build()
}
