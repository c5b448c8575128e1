package engine

const (
	NumTiles       = 64
	NumTilesPerRow = 8
)

// Square addresses a tile, 0 (a8) through 63 (h1). Row 0 is black's back rank.
type Square int

// Column tables flag the files where a step along some offsets would wrap
// around the board edge.
var (
	FirstColumn   = initColumn(0)
	SecondColumn  = initColumn(1)
	SeventhColumn = initColumn(6)
	EighthColumn  = initColumn(7)
)

var (
	FirstRow   = initRow(0)
	SecondRow  = initRow(8)
	ThirdRow   = initRow(16)
	FourthRow  = initRow(24)
	FifthRow   = initRow(32)
	SixthRow   = initRow(40)
	SeventhRow = initRow(48)
	EighthRow  = initRow(56)
)

func initColumn(column int) [NumTiles]bool {
	var col [NumTiles]bool
	for sq := column; sq < NumTiles; sq += NumTilesPerRow {
		col[sq] = true
	}
	return col
}

func initRow(start int) [NumTiles]bool {
	var row [NumTiles]bool
	for sq := start; sq < start+NumTilesPerRow; sq++ {
		row[sq] = true
	}
	return row
}

func IsValidSquare(sq Square) bool {
	return sq >= 0 && sq < NumTiles
}

func (sq Square) File() int {
	return int(sq) % NumTilesPerRow
}

// Row is the row index counted from black's back rank (0) to white's (7).
func (sq Square) Row() int {
	return int(sq) / NumTilesPerRow
}

// Rank is the chess rank, 1 through 8.
func (sq Square) Rank() int {
	return NumTilesPerRow - sq.Row()
}
