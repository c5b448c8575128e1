package engine

import (
	"fmt"
	"strings"
)

// Board is an immutable position. It is produced only by Builder.Build or
// Move.Execute and carries both players' views of the position.
type Board struct {
	tiles          [NumTiles]Tile
	whitePieces    []Piece
	blackPieces    []Piece
	whitePlayer    *Player
	blackPlayer    *Player
	currentPlayer  *Player
	enPassantPawn  *Piece
	transitionMove Move
}

// NewStartingBoard returns the standard initial position with white to move.
func NewStartingBoard() *Board {
	builder := NewBuilder()
	backRank := [...]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file, t := range backRank {
		builder.SetPiece(NewPiece(t, Square(file), Black))
		builder.SetPiece(NewPiece(Pawn, Square(8+file), Black))
		builder.SetPiece(NewPiece(Pawn, Square(48+file), White))
		builder.SetPiece(NewPiece(t, Square(56+file), White))
	}
	builder.SetMoveMaker(White)
	return builder.Build()
}

// Tile returns the tile at sq. A square outside 0-63 is a programming error
// and panics with ErrInvalidCoordinate.
func (b *Board) Tile(sq Square) Tile {
	if !IsValidSquare(sq) {
		panic(fmt.Errorf("%w: %d", ErrInvalidCoordinate, sq))
	}
	return b.tiles[sq]
}

func (b *Board) WhitePieces() []Piece {
	return append([]Piece(nil), b.whitePieces...)
}

func (b *Board) BlackPieces() []Piece {
	return append([]Piece(nil), b.blackPieces...)
}

func (b *Board) pieces(alliance Alliance) []Piece {
	if alliance == White {
		return b.whitePieces
	}
	return b.blackPieces
}

func (b *Board) WhitePlayer() *Player {
	return b.whitePlayer
}

func (b *Board) BlackPlayer() *Player {
	return b.blackPlayer
}

func (b *Board) CurrentPlayer() *Player {
	return b.currentPlayer
}

func (b *Board) player(alliance Alliance) *Player {
	return alliance.choosePlayer(b.whitePlayer, b.blackPlayer)
}

// EnPassantPawn is the pawn that double-stepped on the ply that produced
// this board, if any.
func (b *Board) EnPassantPawn() (Piece, bool) {
	if b.enPassantPawn == nil {
		return Piece{}, false
	}
	return *b.enPassantPawn, true
}

// TransitionMove is the move that produced this board, or NullMove.
func (b *Board) TransitionMove() Move {
	return b.transitionMove
}

func (b *Board) String() string {
	var sb strings.Builder
	for sq := Square(0); sq < NumTiles; sq++ {
		sb.WriteByte(' ')
		if piece, ok := b.tiles[sq].Piece(); ok {
			sb.WriteByte(fenLetter(piece))
		} else {
			sb.WriteByte('-')
		}
		if sq.File() == NumTilesPerRow-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Builder accumulates a placement and turns it into a Board. The placement
// map is not shared with the board it builds.
type Builder struct {
	config         map[Square]Piece
	nextMoveMaker  Alliance
	enPassantPawn  *Piece
	transitionMove Move
}

func NewBuilder() *Builder {
	return &Builder{
		config:         make(map[Square]Piece),
		nextMoveMaker:  White,
		transitionMove: NullMove,
	}
}

func (b *Builder) SetPiece(piece Piece) *Builder {
	if !IsValidSquare(piece.Square) {
		panic(fmt.Errorf("%w: %d", ErrInvalidCoordinate, piece.Square))
	}
	b.config[piece.Square] = piece
	return b
}

func (b *Builder) SetMoveMaker(alliance Alliance) *Builder {
	b.nextMoveMaker = alliance
	return b
}

func (b *Builder) SetEnPassantPawn(pawn Piece) *Builder {
	b.enPassantPawn = &pawn
	return b
}

func (b *Builder) SetTransitionMove(move Move) *Builder {
	b.transitionMove = move
	return b
}

// Build finalizes the position. Both players are built together because each
// one needs the other's pseudo-legal moves to know its check state and castles.
func (b *Builder) Build() *Board {
	board := &Board{transitionMove: b.transitionMove}
	for sq := Square(0); sq < NumTiles; sq++ {
		piece, ok := b.config[sq]
		if !ok {
			board.tiles[sq] = newTile(sq, nil)
			continue
		}
		board.tiles[sq] = newTile(sq, &piece)
		if piece.Alliance == White {
			board.whitePieces = append(board.whitePieces, piece)
		} else {
			board.blackPieces = append(board.blackPieces, piece)
		}
	}
	// Only a pawn actually standing where it was recorded can be captured en passant.
	if b.enPassantPawn != nil {
		if occupant, ok := board.tiles[b.enPassantPawn.Square].Piece(); ok &&
			occupant == *b.enPassantPawn && occupant.Type == Pawn {
			pawn := occupant
			board.enPassantPawn = &pawn
		}
	}

	whiteMoves := calculateLegalMoves(board, board.whitePieces)
	blackMoves := calculateLegalMoves(board, board.blackPieces)
	board.whitePlayer = newPlayer(board, White, whiteMoves, blackMoves)
	board.blackPlayer = newPlayer(board, Black, blackMoves, whiteMoves)
	board.currentPlayer = b.nextMoveMaker.choosePlayer(board.whitePlayer, board.blackPlayer)
	return board
}

func calculateLegalMoves(board *Board, pieces []Piece) []Move {
	var moves []Move
	for _, piece := range pieces {
		moves = append(moves, piece.CalculateLegalMoves(board)...)
	}
	return moves
}
