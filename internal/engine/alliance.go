package engine

type Alliance int

const (
	White Alliance = iota
	Black
)

// Direction is the row delta of a forward pawn step.
func (a Alliance) Direction() int {
	if a == White {
		return -1
	}
	return 1
}

func (a Alliance) Opponent() Alliance {
	if a == White {
		return Black
	}
	return White
}

func (a Alliance) IsWhite() bool {
	return a == White
}

func (a Alliance) IsBlack() bool {
	return a == Black
}

// IsPawnPromotionSquare reports whether a pawn of this alliance promotes on sq.
func (a Alliance) IsPawnPromotionSquare(sq Square) bool {
	if a == White {
		return FirstRow[sq]
	}
	return EighthRow[sq]
}

func (a Alliance) isPawnStartSquare(sq Square) bool {
	if a == White {
		return SeventhRow[sq]
	}
	return SecondRow[sq]
}

func (a Alliance) choosePlayer(white, black *Player) *Player {
	if a == White {
		return white
	}
	return black
}

func (a Alliance) String() string {
	if a == White {
		return "white"
	}
	return "black"
}
