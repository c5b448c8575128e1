package model

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

// WSMove is a move request from a client. UCI, when set, takes precedence
// over the coordinates.
type WSMove struct {
	From      Position `json:"from"`
	To        Position `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
	UCI       string   `json:"uci,omitempty"`
}

func (m WSMove) String() string {
	if m.UCI != "" {
		return m.UCI
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != "" {
		s += "=" + m.Promotion
	}
	return s
}

// resolve finds the engine move the request names on board, or the null move.
func (m WSMove) resolve(board *engine.Board) engine.Move {
	if m.UCI != "" {
		return engine.CreateMoveFromUCI(board, m.UCI)
	}
	from, to := m.From.Square(), m.To.Square()
	if m.Promotion == "" {
		return engine.CreateMove(board, from, to)
	}
	promotion, ok := engine.ParsePieceType(m.Promotion)
	if !ok {
		return engine.NullMove
	}
	return engine.CreatePromotionMove(board, from, to, promotion)
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

type Ply struct {
	Piece          *Piece          `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      string          `json:"promotion"`
	Notation       string          `json:"notation"`
	UCI            string          `json:"uci"`
}

// Move is one line of the score sheet. WhitePly is nil when a game set up
// with black to move starts the sheet.
type Move struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From      Position `json:"from"`
	To        Position `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
}

func newSimpleMove(move engine.Move) SimpleMove {
	sm := SimpleMove{
		From: PositionOf(move.CurrentCoordinate()),
		To:   PositionOf(move.DestinationCoordinate()),
	}
	if move.IsPromotion() {
		sm.Promotion = move.PromotionType().String()
	}
	return sm
}

// newPly describes move for the history. opponent is the side to move after
// it, and decides the check suffix.
func newPly(move engine.Move, opponent *engine.Player) *Ply {
	ply := &Ply{
		Piece:    clientPiece(move.MovedPiece()),
		From:     PositionOf(move.CurrentCoordinate()),
		To:       PositionOf(move.DestinationCoordinate()),
		Notation: move.String(),
		UCI:      move.UCI(),
	}
	if attacked, ok := move.AttackedPiece(); ok {
		ply.CapturedPiece = clientPiece(attacked)
	}
	if move.IsCastlingMove() {
		ply.CastleRookMove = &CastleRookMove{
			From: PositionOf(move.CastleRookStart()),
			To:   PositionOf(move.CastleRookDestination()),
		}
	}
	if move.IsPromotion() {
		ply.Promotion = move.PromotionType().String()
	}
	switch {
	case opponent.IsInCheckMate():
		ply.Notation += "#"
	case opponent.IsInCheck():
		ply.Notation += "+"
	}
	return ply
}

func (p *Ply) String() string {
	return fmt.Sprintf("%s (%s)", p.Notation, p.UCI)
}
