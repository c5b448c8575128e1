// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameStore persists game records. A nil store keeps games in memory only.
type GameStore interface {
	SaveGame(record storage.GameRecord) error
	ListGames() ([]storage.GameRecord, error)
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	store            GameStore
	timeControl      time.Duration
	newID            func() string
	mu               sync.RWMutex
}

func NewGameManager(store GameStore, timeControl time.Duration) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		store:            store,
		timeControl:      timeControl,
		newID:            func() string { return uuid.New().String() },
	}
}

// RegisterMatchmakingChannel subscribes ch to the player's match event. The
// channel needs room for one message; it is closed once the event is sent.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		log.Debugf("replacing matchmaking channel for %s", playerID)
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
	return nil
}

// UnregisterMatchmakingChannel forgets the player's channel without closing
// it; the registering side owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.matchingChannels, playerID)
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (gm *GameManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("matchmaking stopped")
			return
		case <-ticker.C:
			if n := gm.matchPlayers(); n > 0 {
				log.Infof("matchmaking started %d game(s)", n)
			}
		}
	}
}

// matchPlayers starts a game for every pair in the queue, longest waiting
// first, and returns how many it started.
func (gm *GameManager) matchPlayers() int {
	matched := 0
	for {
		first, second, ok := gm.queue.GetNextPair()
		if !ok {
			return matched
		}

		gameID := gm.newID()
		game := model.NewGame(gameID, gm.timeControl)
		firstColor, err := game.AddPlayer(first.ID)
		if err != nil {
			log.Errorf("matchmaking: seat %s: %v", first.ID, err)
			continue
		}
		secondColor, err := game.AddPlayer(second.ID)
		if err != nil {
			log.Errorf("matchmaking: seat %s: %v", second.ID, err)
			continue
		}

		gm.mu.Lock()
		gm.games[gameID] = game
		gm.notifyMatch(first.ID, model.MatchFoundEvent{GameID: gameID, Color: firstColor})
		gm.notifyMatch(second.ID, model.MatchFoundEvent{GameID: gameID, Color: secondColor})
		gm.mu.Unlock()

		gm.persist(game)
		matched++
	}
}

// notifyMatch must be called with gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warnf("matchmaking: %s has no open channel for game %s", playerID, event.GameID)
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- mustJSON(event):
		log.Debugf("sent match for game %s to %s", event.GameID, playerID)
	default:
		log.Warnf("matchmaking: channel for %s is full", playerID)
	}
	close(ch)
}

// Helper function for JSON marshaling
func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	return gm.addGame(model.NewGame(gameID, gm.timeControl))
}

func (gm *GameManager) CreateGameFromFEN(gameID, fen string) error {
	game, err := model.NewGameFromFEN(gameID, fen, gm.timeControl)
	if err != nil {
		return err
	}
	return gm.addGame(game)
}

func (gm *GameManager) addGame(game *model.Game) error {
	gm.mu.Lock()
	if _, exists := gm.games[game.ID]; exists {
		gm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameExists, game.ID)
	}
	gm.games[game.ID] = game
	gm.mu.Unlock()

	gm.persist(game)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(game)
	return color, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	log.Debugf("%s joined matchmaking, %d waiting", playerID, gm.queue.Size())
	return nil
}

// LeaveMatchmaking takes the player out of the queue and reports whether
// they were in it.
func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	gm.UnregisterMatchmakingChannel(playerID)
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, from model.Position) ([]model.SimpleMove, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesFrom(from), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	err = game.MakeMove(playerID, move)
	if err == nil || errors.Is(err, model.ErrGameOver) {
		gm.persist(game)
	}
	return err
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gm *GameManager) SendError(gameID string, playerID string, message string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.SendError(playerID, message)
}

// RestoreGames rebuilds every stored game. Records that no longer replay are
// skipped and logged.
func (gm *GameManager) RestoreGames() (int, error) {
	if gm.store == nil {
		return 0, nil
	}
	records, err := gm.store.ListGames()
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	restored := 0
	for _, record := range records {
		game, err := model.RestoreGame(snapshotOf(record), gm.timeControl)
		if err != nil {
			log.Warnf("skipping stored game: %v", err)
			continue
		}
		gm.mu.Lock()
		gm.games[game.ID] = game
		gm.mu.Unlock()
		restored++
	}
	return restored, nil
}

func (gm *GameManager) persist(game *model.Game) {
	if gm.store == nil {
		return
	}
	if err := gm.store.SaveGame(recordOf(game.Snapshot())); err != nil {
		log.Errorf("save game %s: %v", game.ID, err)
	}
}

func recordOf(s model.GameSnapshot) storage.GameRecord {
	return storage.GameRecord{
		ID:       s.ID,
		StartFEN: s.StartFEN,
		Moves:    s.Moves,
		White:    s.White,
		Black:    s.Black,
		Result:   string(s.Result),
		Winner:   string(s.Winner),
	}
}

func snapshotOf(r storage.GameRecord) model.GameSnapshot {
	return model.GameSnapshot{
		ID:       r.ID,
		StartFEN: r.StartFEN,
		Moves:    r.Moves,
		White:    r.White,
		Black:    r.Black,
		Result:   model.Result(r.Result),
		Winner:   model.PlayerColor(r.Winner),
	}
}
