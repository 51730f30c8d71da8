package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// LobbyManager pushes room-list updates to clients browsing the lobby.
type LobbyManager struct {
	clients map[uuid.UUID]*LobbyClient
	mu      sync.RWMutex
}

type LobbyClient struct {
	id     uuid.UUID
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

func NewLobbyManager() *LobbyManager {
	return &LobbyManager{
		clients: make(map[uuid.UUID]*LobbyClient),
	}
}

func (lm *LobbyManager) HandleConnection(conn *websocket.Conn, userID int64) {
	client := &LobbyClient{
		id:     uuid.New(),
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
	}

	lm.mu.Lock()
	lm.clients[client.id] = client
	lm.mu.Unlock()

	go client.writePump()
	client.readPump(lm)
}

// BroadcastRooms sends the room listing to every lobby client.
func (lm *LobbyManager) BroadcastRooms(rooms interface{}) {
	data, err := json.Marshal(OutgoingMessage{Type: "rooms_update", Payload: rooms})
	if err != nil {
		log.Printf("Failed to marshal lobby update: %v", err)
		return
	}

	lm.mu.RLock()
	defer lm.mu.RUnlock()

	for _, client := range lm.clients {
		select {
		case client.send <- data:
		default:
			// Client buffer full, skip
		}
	}
}

func (c *LobbyClient) readPump(lm *LobbyManager) {
	defer func() {
		lm.removeClient(c.id)
		c.conn.Close()
	}()

	for {
		// The lobby socket is push-only; reads just detect the close.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Lobby WebSocket error: %v", err)
			}
			break
		}
	}
}

func (c *LobbyClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (lm *LobbyManager) removeClient(id uuid.UUID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if client, ok := lm.clients[id]; ok {
		close(client.send)
		delete(lm.clients, id)
	}
}
