package model

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
	fail     bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) last(t *testing.T) ws.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatal("no messages received")
	}
	return c.messages[len(c.messages)-1]
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func seatedGame(t *testing.T, fen string) *Game {
	t.Helper()
	var g *Game
	if fen == "" {
		g = NewGame("g1", time.Minute)
	} else {
		var err error
		if g, err = NewGameFromFEN("g1", fen, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if color, err := g.AddPlayer("alice"); err != nil || color != PlayerColorWhite {
		t.Fatalf("alice seated as %s, %v", color, err)
	}
	if color, err := g.AddPlayer("bob"); err != nil || color != PlayerColorBlack {
		t.Fatalf("bob seated as %s, %v", color, err)
	}
	return g
}

// playUCI makes each move with whoever is to move.
func playUCI(t *testing.T, g *Game, ucis ...string) {
	t.Helper()
	for _, uci := range ucis {
		player := "alice"
		if g.GetState().ToMove == PlayerColorBlack {
			player = "bob"
		}
		if err := g.MakeMove(player, WSMove{UCI: uci}); err != nil {
			t.Fatalf("%s: %v", uci, err)
		}
	}
}

func TestAddPlayer(t *testing.T) {
	g := seatedGame(t, "")

	if color, err := g.AddPlayer("bob"); err != nil || color != PlayerColorBlack {
		t.Errorf("rejoin = %s, %v", color, err)
	}
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Errorf("third player error = %v, want %v", err, ErrGameFull)
	}
	if !g.IsPlayerInGame("alice") || g.IsPlayerInGame("carol") || g.IsPlayerInGame("") {
		t.Error("IsPlayerInGame disagrees with the seats")
	}
	if g.CanSpectate() {
		t.Error("full game open to spectators")
	}
}

func TestMakeMoveErrors(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		player string
		move   WSMove
		want   error
	}{
		{"not seated", "", "carol", WSMove{UCI: "e2e4"}, ErrNotInGame},
		{"out of turn", "", "bob", WSMove{UCI: "e7e5"}, ErrNotYourTurn},
		{"unreachable square", "", "alice", WSMove{UCI: "e2e5"}, ErrIllegalMove},
		{"opponent piece", "", "alice", WSMove{From: Position{4, 1}, To: Position{4, 3}}, ErrIllegalMove},
		{"off the board", "", "alice", WSMove{From: Position{-1, 6}, To: Position{4, 4}}, ErrIllegalMove},
		{"unknown promotion", "8/P6k/8/8/8/8/8/K7 w - - 0 1", "alice", WSMove{From: Position{0, 1}, To: Position{0, 0}, Promotion: "x"}, ErrIllegalMove},
		{"pinned piece", "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1", "alice", WSMove{UCI: "e2d3"}, ErrLeavesKingInCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seatedGame(t, tt.fen)
			before := g.GetState().FEN
			if err := g.MakeMove(tt.player, tt.move); !errors.Is(err, tt.want) {
				t.Fatalf("MakeMove error = %v, want %v", err, tt.want)
			}
			if after := g.GetState().FEN; after != before {
				t.Errorf("position changed to %s", after)
			}
		})
	}
}

func TestMakeMoveUpdatesState(t *testing.T) {
	g := seatedGame(t, "")
	if err := g.MakeMove("alice", WSMove{From: Position{4, 6}, To: Position{4, 4}}); err != nil {
		t.Fatal(err)
	}

	state := g.GetState()
	if state.ToMove != PlayerColorBlack || state.Sound != SoundMove || state.IsCheck {
		t.Errorf("toMove %s, sound %s, check %v", state.ToMove, state.Sound, state.IsCheck)
	}
	if want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; state.FEN != want {
		t.Errorf("FEN = %s, want %s", state.FEN, want)
	}
	if diff := cmp.Diff(&Position{4, 5}, state.EnPassantTarget); diff != "" {
		t.Errorf("en passant target (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&SimpleMove{From: Position{4, 6}, To: Position{4, 4}}, state.LastMove); diff != "" {
		t.Errorf("last move (-want +got):\n%s", diff)
	}
	if len(state.LegalMoves) != 20 {
		t.Errorf("black has %d moves, want 20", len(state.LegalMoves))
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].WhitePly.Notation != "e4" || state.MoveHistory[0].BlackPly != nil {
		t.Fatalf("history = %+v", state.MoveHistory)
	}
	if piece := state.Board.Board[4][4]; piece == nil || piece.Type != "pawn" || !piece.HasMoved {
		t.Errorf("e4 holds %+v", piece)
	}

	playUCI(t, g, "e7e5")
	state = g.GetState()
	if want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"; state.FEN != want {
		t.Errorf("FEN = %s, want %s", state.FEN, want)
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].BlackPly == nil || state.MoveHistory[0].BlackPly.Notation != "e5" {
		t.Errorf("history = %+v", state.MoveHistory)
	}

	playUCI(t, g, "g1f3")
	if got := g.GetState().FEN; !strings.HasSuffix(got, " 1 2") {
		t.Errorf("FEN clocks after a knight move: %s", got)
	}
}

func TestCheckmate(t *testing.T) {
	g := seatedGame(t, "")
	playUCI(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != string(ResultCheckmate) {
		t.Fatalf("resolve = %v", state.Resolve)
	}
	if state.Winner == nil || *state.Winner != PlayerColorBlack {
		t.Errorf("winner = %v", state.Winner)
	}
	if got := state.MoveHistory[1].BlackPly.Notation; got != "Qh4#" {
		t.Errorf("notation = %s", got)
	}
	if !state.IsCheck || state.Sound != SoundCheck || len(state.LegalMoves) != 0 {
		t.Errorf("check %v, sound %s, %d moves", state.IsCheck, state.Sound, len(state.LegalMoves))
	}
	if err := g.MakeMove("alice", WSMove{UCI: "a2a3"}); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after mate error = %v", err)
	}
}

func TestStateEncodesEmptyListsAsArrays(t *testing.T) {
	encode := func(t *testing.T, state GameState) string {
		t.Helper()
		data, err := json.Marshal(state)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	fresh := encode(t, NewGame("g1", time.Minute).GetState())
	for _, want := range []string{`"moveHistory":[]`, `"capturedPieces":{"white":[],"black":[]}`} {
		if !strings.Contains(fresh, want) {
			t.Errorf("new game state lacks %s: %s", want, fresh)
		}
	}

	g := seatedGame(t, "")
	playUCI(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	if mated := encode(t, g.GetState()); !strings.Contains(mated, `"legalMoves":[]`) {
		t.Errorf("finished game state lacks empty legalMoves: %s", mated)
	}
}

func TestStalemate(t *testing.T) {
	g := seatedGame(t, "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	playUCI(t, g, "f1f7")

	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != string(ResultStalemate) {
		t.Fatalf("resolve = %v", state.Resolve)
	}
	if state.Winner != nil {
		t.Errorf("winner = %s", *state.Winner)
	}
}

func TestMoveSoundsAndCaptures(t *testing.T) {
	g := seatedGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 5 9")
	playUCI(t, g, "e4d5")
	state := g.GetState()
	if state.Sound != SoundCapture {
		t.Errorf("sound = %s", state.Sound)
	}
	want := []Piece{{Type: "pawn", Color: PlayerColorBlack, Position: Position{3, 3}, HasMoved: true}}
	if diff := cmp.Diff(want, state.CapturedPieces.White); diff != "" {
		t.Errorf("captured by white (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(state.FEN, " 0 9") {
		t.Errorf("capture did not reset the halfmove clock: %s", state.FEN)
	}

	g = seatedGame(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	playUCI(t, g, "e1g1")
	state = g.GetState()
	if state.Sound != SoundCastle {
		t.Errorf("sound = %s", state.Sound)
	}
	ply := state.MoveHistory[0].WhitePly
	if ply.Notation != "O-O" || ply.CastleRookMove == nil || ply.CastleRookMove.From != (Position{7, 7}) || ply.CastleRookMove.To != (Position{5, 7}) {
		t.Errorf("castle ply = %+v", ply)
	}
}

func TestPromotionRequest(t *testing.T) {
	g := seatedGame(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err := g.MakeMove("alice", WSMove{From: Position{0, 1}, To: Position{0, 0}, Promotion: "knight"}); err != nil {
		t.Fatal(err)
	}
	state := g.GetState()
	if got := state.Board.Board[0][0]; got == nil || got.Type != "knight" {
		t.Errorf("a8 holds %+v", got)
	}
	if got := state.MoveHistory[0].WhitePly.Notation; got != "a8=N" {
		t.Errorf("notation = %s", got)
	}
}

func TestBlackStartsTheSheet(t *testing.T) {
	g := seatedGame(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 12")
	playUCI(t, g, "e8d8", "e1d1", "d8c8")

	history := g.GetState().MoveHistory
	if len(history) != 2 {
		t.Fatalf("history has %d lines", len(history))
	}
	if history[0].WhitePly != nil || history[0].BlackPly.Notation != "Kd8" {
		t.Errorf("first line = %+v", history[0])
	}
	if history[1].WhitePly.Notation != "Kd1" || history[1].BlackPly.Notation != "Kc8" {
		t.Errorf("second line = %+v", history[1])
	}
}

func TestResign(t *testing.T) {
	g := seatedGame(t, "")
	if err := g.Resign("carol"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("spectator resign error = %v", err)
	}
	if err := g.Resign("bob"); err != nil {
		t.Fatal(err)
	}
	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != string(ResultResign) || *state.Winner != PlayerColorWhite {
		t.Errorf("resolve %v, winner %v", state.Resolve, state.Winner)
	}
	if err := g.Resign("alice"); !errors.Is(err, ErrGameOver) {
		t.Errorf("second resign error = %v", err)
	}
}

func TestTimeout(t *testing.T) {
	g := seatedGame(t, "")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	g.whiteClock.now = clock
	g.blackClock.now = clock

	playUCI(t, g, "e2e4")
	now = now.Add(2 * time.Minute)

	if err := g.MakeMove("bob", WSMove{UCI: "e7e5"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("late move error = %v", err)
	}
	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != string(ResultTimeout) || *state.Winner != PlayerColorWhite {
		t.Errorf("resolve %v, winner %v", state.Resolve, state.Winner)
	}
	if state.Players.Black.TimeLeft != 0 || state.Players.White.TimeLeft != 600 {
		t.Errorf("time left = %d / %d", state.Players.White.TimeLeft, state.Players.Black.TimeLeft)
	}
}

func TestLegalMovesFrom(t *testing.T) {
	g := seatedGame(t, "")
	want := []SimpleMove{
		{From: Position{4, 6}, To: Position{4, 5}},
		{From: Position{4, 6}, To: Position{4, 4}},
	}
	got := g.LegalMovesFrom(Position{4, 6})
	if diff := cmp.Diff(want, got, cmpSortMoves); diff != "" {
		t.Errorf("e2 moves (-want +got):\n%s", diff)
	}
	if got := g.LegalMovesFrom(Position{4, 4}); len(got) != 0 {
		t.Errorf("e4 moves = %v", got)
	}
}

var cmpSortMoves = cmp.Transformer("sorted", func(in []SimpleMove) map[string]SimpleMove {
	out := make(map[string]SimpleMove, len(in))
	for _, m := range in {
		out[m.From.String()+m.To.String()+m.Promotion] = m
	}
	return out
})

func TestSnapshotAndRestore(t *testing.T) {
	g := seatedGame(t, "")
	playUCI(t, g, "e2e4", "c7c5", "g1f3")

	snapshot := g.Snapshot()
	if diff := cmp.Diff([]string{"e2e4", "c7c5", "g1f3"}, snapshot.Moves); diff != "" {
		t.Errorf("moves (-want +got):\n%s", diff)
	}
	if snapshot.StartFEN != engine.StartingFEN || snapshot.White != "alice" || snapshot.Black != "bob" || snapshot.Result != "" {
		t.Errorf("snapshot = %+v", snapshot)
	}

	restored, err := RestoreGame(snapshot, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	want, got := g.GetState(), restored.GetState()
	if got.FEN != want.FEN {
		t.Errorf("restored FEN = %s, want %s", got.FEN, want.FEN)
	}
	if diff := cmp.Diff(want.MoveHistory, got.MoveHistory); diff != "" {
		t.Errorf("restored history (-want +got):\n%s", diff)
	}
	if !restored.IsPlayerInGame("alice") || !restored.IsPlayerInGame("bob") {
		t.Error("seats not restored")
	}

	snapshot.Result, snapshot.Winner = ResultResign, PlayerColorBlack
	restored, err = RestoreGame(snapshot, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if state := restored.GetState(); state.Resolve == nil || *state.Resolve != string(ResultResign) || *state.Winner != PlayerColorBlack {
		t.Errorf("resolve %v, winner %v", state.Resolve, state.Winner)
	}
}

func TestReplayUCIErrors(t *testing.T) {
	tests := []struct {
		name  string
		moves []string
		want  error
	}{
		{"unreachable", []string{"e2e4", "e7e4"}, ErrIllegalMove},
		{"garbage", []string{"hello"}, ErrIllegalMove},
		{"after mate", []string{"f2f3", "e7e5", "g2g4", "d8h4", "a2a3"}, ErrGameOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame("g1", time.Minute)
			if err := g.ReplayUCI(tt.moves); !errors.Is(err, tt.want) {
				t.Errorf("ReplayUCI error = %v, want %v", err, tt.want)
			}
		})
	}

	g := NewGame("g1", time.Minute)
	err := g.ReplayUCI([]string{"e1e2"})
	if !errors.Is(err, ErrIllegalMove) || !strings.Contains(err.Error(), "move 1") {
		t.Errorf("error = %v", err)
	}
}

func TestNewGameFromFENErrors(t *testing.T) {
	for _, fen := range []string{
		"",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - x 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 0 0",
	} {
		if _, err := NewGameFromFEN("g1", fen, time.Minute); !errors.Is(err, engine.ErrInvalidFEN) {
			t.Errorf("NewGameFromFEN(%q) error = %v", fen, err)
		}
	}
}

func TestConnections(t *testing.T) {
	g := NewGame("g1", time.Minute)
	if _, err := g.AddPlayer("alice"); err != nil {
		t.Fatal(err)
	}

	white, watcher := &fakeConn{}, &fakeConn{}
	if err := g.RegisterConnection("alice", white); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterConnection("watcher", watcher); err != nil {
		t.Fatalf("spectator refused while a seat is open: %v", err)
	}
	if msg := white.last(t); msg.Type != ws.MessageTypeGameState {
		t.Errorf("initial message type = %s", msg.Type)
	}

	duplicate := &fakeConn{}
	if err := g.RegisterConnection("alice", duplicate); err != nil {
		t.Fatal(err)
	}
	if !duplicate.closed || duplicate.count() != 0 {
		t.Error("duplicate connection not closed")
	}
	g.UnregisterConnection("alice", duplicate)
	if g.connections.Len() != 2 {
		t.Errorf("stale unregister removed the live connection")
	}

	if _, err := g.AddPlayer("bob"); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterConnection("carol", &fakeConn{}); !errors.Is(err, ErrNotInGame) {
		t.Errorf("late spectator error = %v", err)
	}

	watcher.fail = true
	playUCI(t, g, "d2d4")
	var state GameState
	if err := json.Unmarshal(white.last(t).Payload, &state); err != nil {
		t.Fatal(err)
	}
	if state.ToMove != PlayerColorBlack || state.LastMove == nil {
		t.Errorf("broadcast state = %+v", state)
	}
	if g.connections.Len() != 1 {
		t.Errorf("failing connection kept, %d registered", g.connections.Len())
	}

	g.SendError("alice", "not your turn")
	msg := white.last(t)
	var payload ws.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if msg.Type != ws.MessageTypeError || payload.Error != "not your turn" {
		t.Errorf("error message = %s %+v", msg.Type, payload)
	}

	g.UnregisterConnection("alice", white)
	if g.connections.Len() != 0 {
		t.Error("connection still registered")
	}
}
