package model

import "github.com/benbeisheim/chess-backend/internal/engine"

type Player struct {
	ID    string
	Color PlayerColor
}

type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    PlayerColor `json:"color"`
	TimeLeft int         `json:"timeLeft"` // tenths of a second
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func colorOf(alliance engine.Alliance) PlayerColor {
	if alliance == engine.White {
		return PlayerColorWhite
	}
	return PlayerColorBlack
}

func (c PlayerColor) Opponent() PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}
