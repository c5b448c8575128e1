package engine

import (
	"fmt"
	"sync"
)

// Player is one side's view of a board. It is derived from the board and must
// not outlive it: a new board brings new players.
type Player struct {
	board       *Board
	alliance    Alliance
	king        Piece
	legalMoves  []Move
	castleMoves []Move
	isInCheck   bool

	// attacked holds the squares the opponent strikes on this board.
	attacked [NumTiles]bool

	escapeOnce sync.Once
	hasEscape  bool
}

func newPlayer(board *Board, alliance Alliance, legalMoves, opponentMoves []Move) *Player {
	p := &Player{
		board:    board,
		alliance: alliance,
		king:     establishKing(board, alliance),
		attacked: calculateAttackedSquares(board.pieces(alliance.Opponent()), opponentMoves),
	}
	p.isInCheck = p.attacked[p.king.Square]
	p.castleMoves = p.calculateCastleMoves()
	p.legalMoves = make([]Move, 0, len(legalMoves)+len(p.castleMoves))
	p.legalMoves = append(p.legalMoves, legalMoves...)
	p.legalMoves = append(p.legalMoves, p.castleMoves...)
	return p
}

func establishKing(board *Board, alliance Alliance) Piece {
	var king Piece
	count := 0
	for _, piece := range board.pieces(alliance) {
		if piece.Type == King {
			king = piece
			count++
		}
	}
	if count != 1 {
		panic(fmt.Errorf("%w: %s has %d", ErrMissingKing, alliance, count))
	}
	return king
}

// calculateAttackedSquares builds the attack set of one side from its
// pseudo-legal moves. Pawn pushes never attack, so pawns contribute their
// diagonal strikes instead.
func calculateAttackedSquares(pieces []Piece, moves []Move) [NumTiles]bool {
	var attacked [NumTiles]bool
	for _, move := range moves {
		switch move.kind {
		case MoveKindPawnMove, MoveKindPawnJump, MoveKindPawnPromotion:
			continue
		}
		attacked[move.destination] = true
	}
	for _, piece := range pieces {
		if piece.Type != Pawn {
			continue
		}
		for _, sq := range piece.pawnStrikes() {
			attacked[sq] = true
		}
	}
	return attacked
}

type castleRule struct {
	kind        MoveKind
	kingFrom    Square
	kingTo      Square
	rookFrom    Square
	rookTo      Square
	mustBeEmpty []Square
	mustBeSafe  []Square
}

var castleRules = map[Alliance][]castleRule{
	White: {
		{MoveKindKingSideCastle, 60, 62, 63, 61, []Square{61, 62}, []Square{61, 62}},
		{MoveKindQueenSideCastle, 60, 58, 56, 59, []Square{57, 58, 59}, []Square{59, 58}},
	},
	Black: {
		{MoveKindKingSideCastle, 4, 6, 7, 5, []Square{5, 6}, []Square{5, 6}},
		{MoveKindQueenSideCastle, 4, 2, 0, 3, []Square{1, 2, 3}, []Square{3, 2}},
	},
}

func (p *Player) calculateCastleMoves() []Move {
	if p.king.HasMoved || p.isInCheck {
		return nil
	}
	var moves []Move
	for _, rule := range castleRules[p.alliance] {
		if p.king.Square != rule.kingFrom || !p.castlePathClear(rule) {
			continue
		}
		rook, ok := p.board.Tile(rule.rookFrom).Piece()
		if !ok || rook.Type != Rook || rook.Alliance != p.alliance || rook.HasMoved {
			continue
		}
		moves = append(moves, newCastleMove(rule.kind, p.board, p.king, rule.kingTo, rook, rule.rookTo))
	}
	return moves
}

func (p *Player) castlePathClear(rule castleRule) bool {
	for _, sq := range rule.mustBeEmpty {
		if p.board.Tile(sq).IsOccupied() {
			return false
		}
	}
	for _, sq := range rule.mustBeSafe {
		if p.attacked[sq] {
			return false
		}
	}
	return true
}

func (p *Player) Alliance() Alliance {
	return p.alliance
}

func (p *Player) King() Piece {
	return p.king
}

func (p *Player) ActivePieces() []Piece {
	return append([]Piece(nil), p.board.pieces(p.alliance)...)
}

func (p *Player) Opponent() *Player {
	return p.board.player(p.alliance.Opponent())
}

// LegalMoves returns the pseudo-legal moves of every own piece plus the
// castle candidates. King safety is settled by MakeMove.
func (p *Player) LegalMoves() []Move {
	return append([]Move(nil), p.legalMoves...)
}

func (p *Player) CastleMoves() []Move {
	return append([]Move(nil), p.castleMoves...)
}

func (p *Player) IsInCheck() bool {
	return p.isInCheck
}

// IsSquareAttacked reports whether the opponent strikes sq on this board.
func (p *Player) IsSquareAttacked(sq Square) bool {
	return IsValidSquare(sq) && p.attacked[sq]
}

// IsInCheckMate reports whether the player is in check with no move that
// escapes it. It holds for either side, not only the one to move.
func (p *Player) IsInCheckMate() bool {
	return p.isInCheck && !p.hasEscapeMoves()
}

// IsInStaleMate reports whether the player is not in check but has no move
// that keeps its king safe.
func (p *Player) IsInStaleMate() bool {
	return !p.isInCheck && !p.hasEscapeMoves()
}

func (p *Player) hasEscapeMoves() bool {
	p.escapeOnce.Do(func() {
		for _, move := range p.legalMoves {
			if !move.Execute().player(p.alliance).IsInCheck() {
				p.hasEscape = true
				return
			}
		}
	})
	return p.hasEscape
}

// MakeMove tries move on the player's board. The board is returned unchanged
// unless the status is MoveStatusDone.
func (p *Player) MakeMove(move Move) MoveTransition {
	if move.IsNull() || p != p.board.currentPlayer {
		return MoveTransition{Board: p.board, Move: move, Status: MoveStatusIllegalMove}
	}
	legal, ok := p.findLegalMove(move)
	if !ok {
		return MoveTransition{Board: p.board, Move: move, Status: MoveStatusIllegalMove}
	}
	transitionBoard := legal.Execute()
	if transitionBoard.CurrentPlayer().Opponent().IsInCheck() {
		return MoveTransition{Board: p.board, Move: legal, Status: MoveStatusLeavesPlayerInCheck}
	}
	return MoveTransition{Board: transitionBoard, Move: legal, Status: MoveStatusDone}
}

// findLegalMove resolves move against this board's own candidates, so a move
// built on another board is always executed against this one.
func (p *Player) findLegalMove(move Move) (Move, bool) {
	for _, legal := range p.legalMoves {
		if legal.Equal(move) {
			return legal, true
		}
	}
	return NullMove, false
}
