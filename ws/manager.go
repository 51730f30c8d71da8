package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fourline/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Manager is the session layer: it owns the connections, delivers one
// operation at a time per connection, runs the connect/disconnect lifecycle
// hooks and fans successful mutations out to the affected room.
type Manager struct {
	players *game.Players
	rooms   *game.Rooms
	engine  *game.Engine
	lobby   *LobbyManager

	groups     map[int64]*Room
	attachment map[uuid.UUID]int64
	mu         sync.Mutex
}

func NewManager(players *game.Players, rooms *game.Rooms, engine *game.Engine, lobby *LobbyManager) *Manager {
	return &Manager{
		players:    players,
		rooms:      rooms,
		engine:     engine,
		lobby:      lobby,
		groups:     make(map[int64]*Room),
		attachment: make(map[uuid.UUID]int64),
	}
}

// HandleConnection runs the on-connect hook and starts the client's pumps.
// A client that was already a room member before connecting is re-attached
// to its room and sent a fresh snapshot.
func (m *Manager) HandleConnection(conn *websocket.Conn, userID int64) {
	if err := m.players.Connect(userID); err != nil {
		log.Printf("Connect hook failed for user %d: %v", userID, err)
		conn.Close()
		return
	}

	client := &Client{
		id:     uuid.New(),
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
	}

	if state, history, err := m.rooms.RoomState(userID); err == nil {
		m.attach(client, state.ID)
		m.reply(client, OutgoingMessage{Type: "room_state", Payload: state})
		m.reply(client, OutgoingMessage{Type: "chat_history", Payload: history})
		if gs, err := m.engine.State(userID); err == nil {
			m.reply(client, OutgoingMessage{Type: "game_state", Payload: gs})
		}
	}

	go m.writePump(client)
	go m.readPump(client)
}

func (m *Manager) readPump(client *Client) {
	defer func() {
		m.detach(client)
		m.players.Disconnect(client.userID)
		close(client.send)
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var inMsg IncomingMessage
		if err := json.Unmarshal(message, &inMsg); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		m.handleMessage(client, &inMsg)
	}
}

func (m *Manager) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current websocket message
			n := len(client.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) handleMessage(client *Client, msg *IncomingMessage) {
	switch msg.Type {
	case "set_name":
		name, ok := stringField(msg.Payload, "name")
		if !ok {
			m.sendError(client, "name is required")
			return
		}
		if err := m.players.SetName(client.userID, name); err != nil {
			m.sendError(client, err.Error())
			return
		}
		m.reply(client, OutgoingMessage{Type: "name_set"})

	case "create_room":
		title, _ := stringField(msg.Payload, "title")
		event, err := m.rooms.CreateRoom(client.userID, title)
		if err != nil {
			m.sendError(client, err.Error())
			return
		}
		m.attach(client, event.RoomID)
		m.broadcast(event)
		m.sendRoomSnapshot(client)
		m.broadcastLobby()

	case "join_to_room":
		roomID, ok := intField(msg.Payload, "roomId")
		if !ok {
			m.sendError(client, "roomId is required")
			return
		}
		event, err := m.rooms.JoinRoom(client.userID, roomID)
		if err != nil {
			m.sendError(client, err.Error())
			return
		}
		m.attach(client, event.RoomID)
		m.broadcast(event)
		m.sendRoomSnapshot(client)
		m.broadcastLobby()

	case "leave_room":
		events, err := m.rooms.LeaveRoom(client.userID)
		if err != nil {
			m.sendError(client, err.Error())
			return
		}
		m.detach(client)
		for _, event := range events {
			m.broadcast(event)
		}
		m.reply(client, OutgoingMessage{Type: "room_left"})
		m.broadcastLobby()

	case "send_message":
		text, _ := stringField(msg.Payload, "text")
		event, err := m.rooms.SendMessage(client.userID, text)
		if err != nil {
			m.sendError(client, err.Error())
			return
		}
		m.broadcast(event)

	case "create_game":
		m.runEngineOp(client, func() (*game.Event, error) {
			return m.engine.CreateGame(client.userID)
		})

	case "join_to_team":
		teamID, ok := intField(msg.Payload, "teamId")
		if !ok {
			m.sendError(client, "teamId is required")
			return
		}
		m.runEngineOp(client, func() (*game.Event, error) {
			return m.engine.JoinTeam(client.userID, teamID)
		})

	case "drop_piece":
		column, ok := intField(msg.Payload, "column")
		if !ok {
			m.sendError(client, "column is required")
			return
		}
		m.runEngineOp(client, func() (*game.Event, error) {
			return m.engine.DropPiece(client.userID, int(column))
		})

	case "restart_game_table_full":
		m.runEngineOp(client, func() (*game.Event, error) {
			return m.engine.RestartTableFull(client.userID)
		})

	case "restart_game_has_winner":
		m.runEngineOp(client, func() (*game.Event, error) {
			return m.engine.RestartHasWinner(client.userID)
		})

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

func (m *Manager) runEngineOp(client *Client, op func() (*game.Event, error)) {
	event, err := op()
	if err != nil {
		m.sendError(client, err.Error())
		return
	}
	m.broadcast(event)
}

func (m *Manager) sendRoomSnapshot(client *Client) {
	state, history, err := m.rooms.RoomState(client.userID)
	if err != nil {
		return
	}
	m.reply(client, OutgoingMessage{Type: "room_state", Payload: state})
	m.reply(client, OutgoingMessage{Type: "chat_history", Payload: history})
}

func (m *Manager) broadcast(event *game.Event) {
	m.group(event.RoomID).Broadcast(OutgoingMessage{Type: event.Type, Payload: event.Payload})
}

func (m *Manager) broadcastLobby() {
	listings, err := m.rooms.ListRooms()
	if err != nil {
		log.Printf("Failed to list rooms for lobby update: %v", err)
		return
	}
	m.lobby.BroadcastRooms(listings)
}

func (m *Manager) group(roomID int64) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, exists := m.groups[roomID]
	if !exists {
		group = NewRoom(roomID)
		m.groups[roomID] = group
	}
	return group
}

func (m *Manager) attach(client *Client, roomID int64) {
	m.group(roomID).AddClient(client)
	m.mu.Lock()
	m.attachment[client.id] = roomID
	m.mu.Unlock()
}

func (m *Manager) detach(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID, attached := m.attachment[client.id]
	if !attached {
		return
	}
	delete(m.attachment, client.id)

	if group := m.groups[roomID]; group != nil {
		group.RemoveClient(client)
		if group.ClientCount() == 0 {
			delete(m.groups, roomID)
		}
	}
}

func (m *Manager) reply(client *Client, msg OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal reply: %v", err)
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (m *Manager) sendError(client *Client, message string) {
	m.reply(client, OutgoingMessage{
		Type:    "error",
		Payload: map[string]string{"message": message},
	})
}

func stringField(payload map[string]interface{}, key string) (string, bool) {
	value, ok := payload[key].(string)
	return value, ok
}

func intField(payload map[string]interface{}, key string) (int64, bool) {
	value, ok := payload[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(value), true
}
