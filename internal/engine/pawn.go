package engine

const (
	pawnPush   = 8
	pawnJump   = 16
	pawnStrike = 7
	pawnOther  = 9
)

var pawnOffsets = []int{pawnPush, pawnJump, pawnStrike, pawnOther}

func (p Piece) pawnMoves(board *Board) []Move {
	var moves []Move
	direction := p.Alliance.Direction()
	for _, offset := range pawnOffsets {
		delta := offset * direction
		if isEdgeExclusion(p.Square, delta) {
			continue
		}
		candidate := p.Square + Square(delta)
		if !IsValidSquare(candidate) {
			continue
		}
		tile := board.Tile(candidate)

		switch offset {
		case pawnPush:
			if tile.IsOccupied() {
				continue
			}
			if p.Alliance.IsPawnPromotionSquare(candidate) {
				for _, t := range promotionTypes {
					moves = append(moves, newPawnPromotion(board, p, candidate, t))
				}
			} else {
				moves = append(moves, newPawnMove(board, p, candidate))
			}

		case pawnJump:
			if p.HasMoved || !p.Alliance.isPawnStartSquare(p.Square) {
				continue
			}
			behind := p.Square + Square(pawnPush*direction)
			if board.Tile(behind).IsOccupied() || tile.IsOccupied() {
				continue
			}
			moves = append(moves, newPawnJump(board, p, candidate))

		default:
			if occupant, ok := tile.Piece(); ok {
				if occupant.Alliance == p.Alliance {
					continue
				}
				if p.Alliance.IsPawnPromotionSquare(candidate) {
					for _, t := range promotionTypes {
						moves = append(moves, newPawnAttackPromotion(board, p, candidate, occupant, t))
					}
				} else {
					moves = append(moves, newPawnAttackMove(board, p, candidate, occupant))
				}
				continue
			}
			// The en passant pawn sits beside us, on the file we strike towards.
			enPassant, ok := board.EnPassantPawn()
			if ok && enPassant.Alliance != p.Alliance &&
				enPassant.Square == p.Square+Square(candidate.File()-p.Square.File()) {
				moves = append(moves, newPawnEnPassantMove(board, p, candidate, enPassant))
			}
		}
	}
	return moves
}

// pawnStrikes returns the two diagonal squares a pawn attacks, whether or not
// anything stands there.
func (p Piece) pawnStrikes() []Square {
	var squares []Square
	direction := p.Alliance.Direction()
	for _, offset := range []int{pawnStrike, pawnOther} {
		delta := offset * direction
		if isEdgeExclusion(p.Square, delta) {
			continue
		}
		if candidate := p.Square + Square(delta); IsValidSquare(candidate) {
			squares = append(squares, candidate)
		}
	}
	return squares
}
