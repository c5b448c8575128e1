package engine

// CreateMove finds the candidate of the player to move that goes from one
// square to another. King moves look at castle candidates first. A pawn
// reaching the last rank yields the queen promotion. NullMove means no
// candidate matched.
func CreateMove(board *Board, from, to Square) Move {
	piece, ok := pieceToMove(board, from, to)
	if !ok {
		return NullMove
	}
	player := board.CurrentPlayer()
	if piece.Type == King {
		for _, move := range player.castleMoves {
			if move.CurrentCoordinate() == from && move.DestinationCoordinate() == to {
				return move
			}
		}
	}
	for _, move := range player.legalMoves {
		if move.CurrentCoordinate() == from && move.DestinationCoordinate() == to {
			return move
		}
	}
	return NullMove
}

// CreatePromotionMove is CreateMove for a promotion with a chosen piece type.
func CreatePromotionMove(board *Board, from, to Square, promotion PieceType) Move {
	if _, ok := pieceToMove(board, from, to); !ok {
		return NullMove
	}
	for _, move := range board.CurrentPlayer().legalMoves {
		if move.IsPromotion() && move.promotion == promotion &&
			move.CurrentCoordinate() == from && move.DestinationCoordinate() == to {
			return move
		}
	}
	return NullMove
}

// CreateMoveFromUCI resolves a coordinate move such as "e2e4" or "e7e8n".
func CreateMoveFromUCI(board *Board, uci string) Move {
	if len(uci) != 4 && len(uci) != 5 {
		return NullMove
	}
	from, err := ParseSquare(uci[0:2])
	if err != nil {
		return NullMove
	}
	to, err := ParseSquare(uci[2:4])
	if err != nil {
		return NullMove
	}
	if len(uci) == 4 {
		return CreateMove(board, from, to)
	}
	promotion, ok := ParsePieceType(uci[4:])
	if !ok {
		return NullMove
	}
	return CreatePromotionMove(board, from, to, promotion)
}

func pieceToMove(board *Board, from, to Square) (Piece, bool) {
	if !IsValidSquare(from) || !IsValidSquare(to) {
		return Piece{}, false
	}
	piece, ok := board.Tile(from).Piece()
	if !ok || piece.Alliance != board.CurrentPlayer().Alliance() {
		return Piece{}, false
	}
	return piece, true
}
