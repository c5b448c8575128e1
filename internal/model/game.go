package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/gofiber/fiber/v2/log"
)

// DefaultTimeControl is the time each player starts with.
const DefaultTimeControl = 10 * time.Minute

type Result string

const (
	ResultCheckmate Result = "checkmate"
	ResultStalemate Result = "stalemate"
	ResultResign    Result = "resign"
	ResultTimeout   Result = "timeout"
)

const (
	SoundMove    = "move"
	SoundCapture = "capture"
	SoundCastle  = "castle"
	SoundCheck   = "check"
)

// The Game struct focuses on a single game's state and its observers
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *engine.Board
	startFEN    string
	moves       []string // coordinate notation, replayable from startFEN
	state       GameState
	connections *GameConnections // Connections just for this game
	whiteClock  *Clock
	blackClock  *Clock

	halfmoveClock  int
	fullmoveNumber int
}

type GameState struct {
	Sound           string         `json:"sound"`
	Board           *BoardState    `json:"boardState"`
	ToMove          PlayerColor    `json:"toMove"`
	MoveHistory     []Move         `json:"moveHistory"`
	CapturedPieces  CapturedPieces `json:"capturedPieces"`
	IsCheck         bool           `json:"isCheck"`
	LegalMoves      []SimpleMove   `json:"legalMoves"`
	EnPassantTarget *Position      `json:"enPassantTarget"`
	Resolve         *string        `json:"resolve"`
	Winner          *PlayerColor   `json:"winner"`
	Players         Players        `json:"players"`
	LastMove        *SimpleMove    `json:"lastMove"`
	FEN             string         `json:"fen"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// CapturedPieces lists what each side has taken: White holds black pieces.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// GameSnapshot is the part of a game that survives a restart.
type GameSnapshot struct {
	ID       string
	StartFEN string
	Moves    []string
	White    string
	Black    string
	Result   Result
	Winner   PlayerColor
}

func NewGame(id string, timeControl time.Duration) *Game {
	return newGame(id, engine.NewStartingBoard(), timeControl, 0, 1)
}

// NewGameFromFEN starts a game from an arbitrary position. The FEN clock
// fields are optional.
func NewGameFromFEN(id, fen string, timeControl time.Duration) (*Game, error) {
	board, err := engine.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	halfmove, fullmove, err := parseFENClocks(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, board, timeControl, halfmove, fullmove), nil
}

func parseFENClocks(fen string) (halfmove, fullmove int, err error) {
	halfmove, fullmove = 0, 1
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		if halfmove, err = strconv.Atoi(fields[4]); err != nil || halfmove < 0 {
			return 0, 0, fmt.Errorf("halfmove clock %q: %w", fields[4], engine.ErrInvalidFEN)
		}
	}
	if len(fields) > 5 {
		if fullmove, err = strconv.Atoi(fields[5]); err != nil || fullmove < 1 {
			return 0, 0, fmt.Errorf("fullmove number %q: %w", fields[5], engine.ErrInvalidFEN)
		}
	}
	return halfmove, fullmove, nil
}

func newGame(id string, board *engine.Board, timeControl time.Duration, halfmove, fullmove int) *Game {
	if timeControl <= 0 {
		timeControl = DefaultTimeControl
	}
	g := &Game{
		ID:             id,
		board:          board,
		startFEN:       board.FENWithClocks(halfmove, fullmove),
		connections:    NewGameConnections(),
		whiteClock:     NewClock(timeControl),
		blackClock:     NewClock(timeControl),
		halfmoveClock:  halfmove,
		fullmoveNumber: fullmove,
	}
	g.state = GameState{
		MoveHistory: make([]Move, 0),
		CapturedPieces: CapturedPieces{
			White: make([]Piece, 0),
			Black: make([]Piece, 0),
		},
		Players: Players{
			White: ClientPlayer{Color: PlayerColorWhite},
			Black: ClientPlayer{Color: PlayerColorBlack},
		},
	}
	g.refresh()
	return g
}

// RestoreGame rebuilds a game by replaying its recorded moves. Clocks start
// over from the full time control.
func RestoreGame(snapshot GameSnapshot, timeControl time.Duration) (*Game, error) {
	g, err := NewGameFromFEN(snapshot.ID, snapshot.StartFEN, timeControl)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snapshot.ID, err)
	}
	g.state.Players.White.ID = snapshot.White
	g.state.Players.Black.ID = snapshot.Black
	if err := g.ReplayUCI(snapshot.Moves); err != nil {
		return nil, fmt.Errorf("restore %s: %w", snapshot.ID, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Resolve == nil && snapshot.Result != "" {
		var winner *PlayerColor
		if snapshot.Winner != "" {
			w := snapshot.Winner
			winner = &w
		}
		g.finish(snapshot.Result, winner)
	}
	return g, nil
}

func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := GameSnapshot{
		ID:       g.ID,
		StartFEN: g.startFEN,
		Moves:    append([]string(nil), g.moves...),
		White:    g.state.Players.White.ID,
		Black:    g.state.Players.Black.ID,
	}
	if g.state.Resolve != nil {
		snapshot.Result = Result(*g.state.Resolve)
	}
	if g.state.Winner != nil {
		snapshot.Winner = *g.state.Winner
	}
	return snapshot
}

// AddPlayer seats the player: white first, then black. A player who is
// already seated gets the same color back.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.seatOf(playerID); ok {
		return color, nil
	}
	if g.state.Players.White.ID == "" {
		g.state.Players.White.ID = playerID
		return PlayerColorWhite, nil
	}
	if g.state.Players.Black.ID == "" {
		g.state.Players.Black.ID = playerID
		return PlayerColorBlack, nil
	}
	return "", fmt.Errorf("%w: %s", ErrGameFull, g.ID)
}

func (g *Game) seatOf(playerID string) (PlayerColor, bool) {
	switch {
	case playerID == "":
		return "", false
	case g.state.Players.White.ID == playerID:
		return PlayerColorWhite, true
	case g.state.Players.Black.ID == playerID:
		return PlayerColorBlack, true
	}
	return "", false
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	resolved := g.state.Resolve != nil
	g.checkFlag()
	state := g.snapshot()
	g.mu.Unlock()

	if !resolved && state.Resolve != nil {
		g.broadcast(state)
	}
	return state
}

// LegalMovesFrom lists the playable moves of the piece on from.
func (g *Game) LegalMovesFrom(from Position) []SimpleMove {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := make([]SimpleMove, 0)
	for _, move := range g.state.LegalMoves {
		if move.From == from {
			moves = append(moves, move)
		}
	}
	return moves
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.seatOf(playerID)
	return ok
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	resolved := g.state.Resolve != nil
	err := g.makeMove(playerID, move)
	changed := err == nil || (!resolved && g.state.Resolve != nil)
	state := g.snapshot()
	g.mu.Unlock()

	if changed {
		g.broadcast(state)
	}
	return err
}

func (g *Game) makeMove(playerID string, move WSMove) error {
	if g.state.Resolve != nil {
		return ErrGameOver
	}
	color, ok := g.seatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInGame, playerID)
	}
	mover := g.board.CurrentPlayer()
	if color != colorOf(mover.Alliance()) {
		return ErrNotYourTurn
	}
	if g.checkFlag() {
		return fmt.Errorf("%w: %s ran out of time", ErrGameOver, color)
	}

	candidate := move.resolve(g.board)
	if candidate.IsNull() {
		return fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}
	transition := mover.MakeMove(candidate)
	switch transition.Status {
	case engine.MoveStatusIllegalMove:
		return fmt.Errorf("%w: %s", ErrIllegalMove, move)
	case engine.MoveStatusLeavesPlayerInCheck:
		return fmt.Errorf("%w: %s", ErrLeavesKingInCheck, move)
	}

	g.clock(color).Stop()
	ply := g.apply(transition)
	if g.state.Resolve == nil {
		g.clock(color.Opponent()).Start()
	}
	log.Debugf("game %s: %s played %s", g.ID, color, ply)
	return nil
}

// Resign ends the game in the opponent's favour.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	if g.state.Resolve != nil {
		g.mu.Unlock()
		return ErrGameOver
	}
	color, ok := g.seatOf(playerID)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotInGame, playerID)
	}
	winner := color.Opponent()
	g.finish(ResultResign, &winner)
	state := g.snapshot()
	g.mu.Unlock()

	g.broadcast(state)
	return nil
}

// ReplayUCI plays recorded moves without touching the clocks or notifying
// connections.
func (g *Game) ReplayUCI(moves []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, uci := range moves {
		if g.state.Resolve != nil {
			return fmt.Errorf("move %d %q: %w", i+1, uci, ErrGameOver)
		}
		candidate := engine.CreateMoveFromUCI(g.board, uci)
		if candidate.IsNull() {
			return fmt.Errorf("move %d %q: %w", i+1, uci, ErrIllegalMove)
		}
		transition := g.board.CurrentPlayer().MakeMove(candidate)
		switch transition.Status {
		case engine.MoveStatusIllegalMove:
			return fmt.Errorf("move %d %q: %w", i+1, uci, ErrIllegalMove)
		case engine.MoveStatusLeavesPlayerInCheck:
			return fmt.Errorf("move %d %q: %w", i+1, uci, ErrLeavesKingInCheck)
		}
		g.apply(transition)
	}
	return nil
}

// apply records a completed transition and makes its board current.
func (g *Game) apply(transition engine.MoveTransition) *Ply {
	move := transition.Move
	next := transition.Board
	mover := colorOf(move.MovedPiece().Alliance)
	opponent := next.CurrentPlayer()
	ply := newPly(move, opponent)

	switch {
	case opponent.IsInCheck():
		g.state.Sound = SoundCheck
	case move.IsCastlingMove():
		g.state.Sound = SoundCastle
	case move.IsAttack():
		g.state.Sound = SoundCapture
	default:
		g.state.Sound = SoundMove
	}

	if ply.CapturedPiece != nil {
		if mover == PlayerColorWhite {
			g.state.CapturedPieces.White = append(g.state.CapturedPieces.White, *ply.CapturedPiece)
		} else {
			g.state.CapturedPieces.Black = append(g.state.CapturedPieces.Black, *ply.CapturedPiece)
		}
	}

	history := g.state.MoveHistory
	switch {
	case mover == PlayerColorWhite:
		g.state.MoveHistory = append(history, Move{WhitePly: ply})
	case len(history) == 0 || history[len(history)-1].BlackPly != nil:
		g.state.MoveHistory = append(history, Move{BlackPly: ply})
	default:
		history[len(history)-1].BlackPly = ply
	}

	if move.MovedPiece().Type == engine.Pawn || move.IsAttack() {
		g.halfmoveClock = 0
	} else {
		g.halfmoveClock++
	}
	if mover == PlayerColorBlack {
		g.fullmoveNumber++
	}

	g.board = next
	g.moves = append(g.moves, move.UCI())
	last := newSimpleMove(move)
	g.state.LastMove = &last

	switch {
	case opponent.IsInCheckMate():
		g.finish(ResultCheckmate, &mover)
	case opponent.IsInStaleMate():
		g.finish(ResultStalemate, nil)
	}
	g.refresh()
	return ply
}

// refresh derives the board-dependent parts of the state from g.board.
func (g *Game) refresh() {
	player := g.board.CurrentPlayer()
	g.state.Board = newBoardState(g.board)
	g.state.ToMove = colorOf(player.Alliance())
	g.state.IsCheck = player.IsInCheck()
	g.state.FEN = g.board.FENWithClocks(g.halfmoveClock, g.fullmoveNumber)

	g.state.EnPassantTarget = nil
	if pawn, ok := g.board.EnPassantPawn(); ok {
		target := PositionOf(pawn.Square - engine.Square(engine.NumTilesPerRow*pawn.Alliance.Direction()))
		g.state.EnPassantTarget = &target
	}

	g.state.LegalMoves = make([]SimpleMove, 0)
	if g.state.Resolve != nil {
		return
	}
	for _, move := range player.LegalMoves() {
		if player.MakeMove(move).Status.IsDone() {
			g.state.LegalMoves = append(g.state.LegalMoves, newSimpleMove(move))
		}
	}
}

func (g *Game) finish(result Result, winner *PlayerColor) {
	resolve := string(result)
	g.state.Resolve = &resolve
	g.state.Winner = winner
	g.state.LegalMoves = make([]SimpleMove, 0)
	g.whiteClock.Stop()
	g.blackClock.Stop()
	log.Infof("game %s finished: %s", g.ID, result)
}

// checkFlag ends the game if the side to move has run out of time.
func (g *Game) checkFlag() bool {
	if g.state.Resolve != nil {
		return false
	}
	color := colorOf(g.board.CurrentPlayer().Alliance())
	if !g.clock(color).Flagged() {
		return false
	}
	winner := color.Opponent()
	g.finish(ResultTimeout, &winner)
	return true
}

func (g *Game) clock(color PlayerColor) *Clock {
	if color == PlayerColorWhite {
		return g.whiteClock
	}
	return g.blackClock
}

// snapshot copies the state so it can leave the lock.
func (g *Game) snapshot() GameState {
	state := g.state
	state.MoveHistory = cloneSlice(g.state.MoveHistory)
	state.LegalMoves = cloneSlice(g.state.LegalMoves)
	state.CapturedPieces = CapturedPieces{
		White: cloneSlice(g.state.CapturedPieces.White),
		Black: cloneSlice(g.state.CapturedPieces.Black),
	}
	state.Players.White.TimeLeft = g.whiteClock.Tenths()
	state.Players.Black.TimeLeft = g.blackClock.Tenths()
	return state
}

// cloneSlice copies s into a non-nil slice so empty lists encode as [].
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
