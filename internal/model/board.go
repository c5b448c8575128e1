package model

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

type BoardState struct {
	Board             [][]*Piece `json:"board"`
	BlackKingPosition Position   `json:"blackKingPosition"`
	WhiteKingPosition Position   `json:"whiteKingPosition"`
}

type Piece struct {
	Type     string      `json:"type"`
	Color    PlayerColor `json:"color"`
	Position Position    `json:"position"`
	HasMoved bool        `json:"hasMoved"`
}

// Position is a client coordinate: x is the file (0 = a), y the row counted
// from black's back rank (0 = rank 8).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func PositionOf(sq engine.Square) Position {
	return Position{X: sq.File(), Y: sq.Row()}
}

// Square converts back to an engine square, or -1 when off the board.
func (p Position) Square() engine.Square {
	if p.X < 0 || p.X >= engine.NumTilesPerRow || p.Y < 0 || p.Y >= engine.NumTilesPerRow {
		return -1
	}
	return engine.Square(p.Y*engine.NumTilesPerRow + p.X)
}

func (p Position) String() string {
	if sq := p.Square(); engine.IsValidSquare(sq) {
		return sq.String()
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func clientPiece(piece engine.Piece) *Piece {
	return &Piece{
		Type:     piece.Type.String(),
		Color:    colorOf(piece.Alliance),
		Position: PositionOf(piece.Square),
		HasMoved: piece.HasMoved,
	}
}

func newBoardState(board *engine.Board) *BoardState {
	state := &BoardState{
		Board:             make([][]*Piece, engine.NumTilesPerRow),
		WhiteKingPosition: PositionOf(board.WhitePlayer().King().Square),
		BlackKingPosition: PositionOf(board.BlackPlayer().King().Square),
	}
	for row := range state.Board {
		state.Board[row] = make([]*Piece, engine.NumTilesPerRow)
	}
	for sq := engine.Square(0); sq < engine.NumTiles; sq++ {
		if piece, ok := board.Tile(sq).Piece(); ok {
			state.Board[sq.Row()][sq.File()] = clientPiece(piece)
		}
	}
	return state
}
