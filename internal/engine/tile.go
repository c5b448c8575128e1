package engine

// Tile is a single square of a board, either empty or holding one piece.
type Tile struct {
	square   Square
	piece    Piece
	occupied bool
}

var emptyTiles = createAllPossibleEmptyTiles()

func createAllPossibleEmptyTiles() [NumTiles]Tile {
	var tiles [NumTiles]Tile
	for sq := Square(0); sq < NumTiles; sq++ {
		tiles[sq] = Tile{square: sq}
	}
	return tiles
}

func newTile(sq Square, piece *Piece) Tile {
	if piece == nil {
		return emptyTiles[sq]
	}
	return Tile{square: sq, piece: *piece, occupied: true}
}

func (t Tile) Square() Square {
	return t.square
}

func (t Tile) IsOccupied() bool {
	return t.occupied
}

// Piece returns the occupant; ok is false for an empty tile.
func (t Tile) Piece() (piece Piece, ok bool) {
	return t.piece, t.occupied
}
