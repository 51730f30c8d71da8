package game

// Event is a state change fanned out to the websocket room after an
// operation commits.
type Event struct {
	Type    string      `json:"type"`
	RoomID  int64       `json:"roomId"`
	Payload interface{} `json:"payload"`
}

type TeamState struct {
	ID      int64   `json:"id"`
	Label   string  `json:"label"`
	Members []int64 `json:"members"`
}

type Winner struct {
	TeamID int64   `json:"teamId"`
	Cells  []Coord `json:"cells"`
}

type GameState struct {
	RoomID        int64       `json:"roomId"`
	Grid          Grid        `json:"grid"`
	Teams         []TeamState `json:"teams"`
	CurrentTeamID int64       `json:"currentTeamId,omitempty"`
	Winner        *Winner     `json:"winner,omitempty"`
	LastMove      *Coord      `json:"lastMove,omitempty"`
}

type RoomState struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	OwnerID int64    `json:"ownerId"`
	Members []Member `json:"members"`
}

type Member struct {
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
}

type ChatMessage struct {
	SenderID int64  `json:"senderId"`
	SentAt   string `json:"sentAt"`
	Text     string `json:"text"`
}

type RoomListing struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	OwnerID     int64  `json:"ownerId"`
	MemberCount int    `json:"memberCount"`
}

type MemberChangedPayload struct {
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type OwnerChangedPayload struct {
	OwnerID int64 `json:"ownerId"`
}

type MessagePayload struct {
	SenderID int64  `json:"senderId"`
	Text     string `json:"text"`
}

type TeamJoinedPayload struct {
	PlayerID int64 `json:"playerId"`
	TeamID   int64 `json:"teamId"`
}
