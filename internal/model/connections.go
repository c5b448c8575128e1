package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// connection serializes writes; a websocket allows one writer at a time.
type connection struct {
	mu   sync.Mutex
	conn Conn
}

func (c *connection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*connection // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*connection),
	}
}

func (gc *GameConnections) get(playerID string) (*connection, bool) {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	c, ok := gc.connections[playerID]
	return c, ok
}

func (gc *GameConnections) all() map[string]*connection {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	active := make(map[string]*connection, len(gc.connections))
	for playerID, c := range gc.connections {
		active[playerID] = c
	}
	return active
}

// remove drops the player's connection if it is still conn.
func (gc *GameConnections) remove(playerID string, conn Conn) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if c, ok := gc.connections[playerID]; ok && c.conn == conn {
		delete(gc.connections, playerID)
		return true
	}
	return false
}

func (gc *GameConnections) Len() int {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return len(gc.connections)
}

// RegisterConnection subscribes conn to the game's state. Seated players may
// always connect; anyone else only while a seat is open. A second connection
// for the same player is closed and the first one kept.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.seatOf(playerID)
	authorized := seated || g.canSpectate()
	state := g.snapshot()
	g.mu.Unlock()

	if !authorized {
		return fmt.Errorf("%w: %s", ErrNotInGame, playerID)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection already exists"),
		)
		_ = conn.Close()
		log.Infof("game %s: rejected duplicate connection for %s", g.ID, playerID)
		return nil
	}
	c := &connection{conn: conn}
	g.connections.connections[playerID] = c
	g.connections.mu.Unlock()
	log.Infof("game %s: %s connected", g.ID, playerID)

	return g.send(playerID, c, ws.MessageTypeGameState, state)
}

func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	if g.connections.remove(playerID, conn) {
		log.Infof("game %s: %s disconnected", g.ID, playerID)
	}
}

// SendError reports a failed request to one player only.
func (g *Game) SendError(playerID, message string) {
	c, ok := g.connections.get(playerID)
	if !ok {
		return
	}
	_ = g.send(playerID, c, ws.MessageTypeError, ws.ErrorPayload{Error: message})
}

func (g *Game) broadcast(state GameState) {
	for playerID, c := range g.connections.all() {
		_ = g.send(playerID, c, ws.MessageTypeGameState, state)
	}
}

// send writes one message; a connection that fails is dropped.
func (g *Game) send(playerID string, c *connection, messageType ws.MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("game %s: marshal %s: %v", g.ID, messageType, err)
		return err
	}
	if err := c.writeJSON(ws.Message{Type: messageType, Payload: data}); err != nil {
		log.Warnf("game %s: send %s to %s: %v", g.ID, messageType, playerID, err)
		g.connections.remove(playerID, c.conn)
		return err
	}
	return nil
}
