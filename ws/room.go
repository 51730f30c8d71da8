package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

// Room fans out events to every client attached to one game room.
type Room struct {
	roomID  int64
	clients map[uuid.UUID]*Client
	mu      sync.RWMutex
}

func NewRoom(roomID int64) *Room {
	return &Room{
		roomID:  roomID,
		clients: make(map[uuid.UUID]*Client),
	}
}

func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	r.clients[client.id] = client
	r.mu.Unlock()
}

func (r *Room) RemoveClient(client *Client) {
	r.mu.Lock()
	delete(r.clients, client.id)
	r.mu.Unlock()
}

func (r *Room) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, skip
			log.Printf("Client %s send buffer full", client.id)
		}
	}
}

func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
