package game

import (
	"errors"

	"fourline/auth"
	"fourline/store"
)

var (
	ErrEmptyTitle    = errors.New("room title must not be empty")
	ErrPlayerUnnamed = errors.New("player has no name")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotInRoom     = errors.New("not in a room")
	ErrEmptyMessage  = errors.New("message must not be empty")
)

// Rooms owns rooms, room memberships, ownership transfer and the cascading
// room teardown.
type Rooms struct {
	store store.Store
}

func NewRooms(s store.Store) *Rooms {
	return &Rooms{store: s}
}

func (r *Rooms) CreateRoom(userID int64, title string) (*Event, error) {
	title = auth.SanitizeString(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var event *Event
	err := r.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}
		if !player.Named {
			return ErrPlayerUnnamed
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership != nil {
			return ErrAlreadyInRoom
		}

		roomID, err := tx.CreateRoom(title, player.ID)
		if err != nil {
			return err
		}
		if err := tx.CreateMembership(roomID, player.ID); err != nil {
			return err
		}

		event = &Event{
			Type:    "player_joined",
			RoomID:  roomID,
			Payload: MemberChangedPayload{PlayerID: player.ID, Name: player.Name},
		}
		return nil
	})
	return event, err
}

func (r *Rooms) JoinRoom(userID, roomID int64) (*Event, error) {
	var event *Event
	err := r.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership != nil {
			return ErrAlreadyInRoom
		}

		room, err := tx.GetRoom(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if !player.Named {
			return ErrPlayerUnnamed
		}

		if err := tx.CreateMembership(roomID, player.ID); err != nil {
			return err
		}

		event = &Event{
			Type:    "player_joined",
			RoomID:  roomID,
			Payload: MemberChangedPayload{PlayerID: player.ID, Name: player.Name},
		}
		return nil
	})
	return event, err
}

// LeaveRoom removes the caller's membership. It is a no-op when the caller is
// not a member. Leaving the current team runs first, then ownership transfer
// or, for the last member, the full cascade.
func (r *Rooms) LeaveRoom(userID int64) ([]*Event, error) {
	var events []*Event
	err := r.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		if err := leaveTeam(tx, player.ID); err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return nil
		}

		if err := tx.DeleteMembership(player.ID); err != nil {
			return err
		}
		events = append(events, &Event{
			Type:    "player_left",
			RoomID:  membership.RoomID,
			Payload: MemberChangedPayload{PlayerID: player.ID},
		})

		members, err := tx.ListRoomMembers(membership.RoomID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return deleteRoomCascade(tx, membership.RoomID)
		}

		room, err := tx.GetRoom(membership.RoomID)
		if err != nil {
			return err
		}
		if room != nil && room.OwnerID == player.ID {
			// Promote the earliest-joined remaining member.
			nextOwner := members[0].PlayerID
			if err := tx.UpdateRoomOwner(room.ID, nextOwner); err != nil {
				return err
			}
			events = append(events, &Event{
				Type:    "owner_changed",
				RoomID:  room.ID,
				Payload: OwnerChangedPayload{OwnerID: nextOwner},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *Rooms) SendMessage(userID int64, text string) (*Event, error) {
	text = auth.SanitizeString(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var event *Event
	err := r.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrNotInRoom
		}

		if err := tx.AppendMessage(membership.RoomID, player.ID, text); err != nil {
			return err
		}
		event = &Event{
			Type:    "message",
			RoomID:  membership.RoomID,
			Payload: MessagePayload{SenderID: player.ID, Text: text},
		}
		return nil
	})
	return event, err
}

func (r *Rooms) ListRooms() ([]RoomListing, error) {
	var listings []RoomListing
	err := r.store.Atomic(func(tx *store.Tx) error {
		rows, err := tx.ListRooms()
		if err != nil {
			return err
		}
		listings = make([]RoomListing, 0, len(rows))
		for _, row := range rows {
			listings = append(listings, RoomListing{
				ID:          row.ID,
				Title:       row.Title,
				OwnerID:     row.OwnerID,
				MemberCount: row.MemberCount,
			})
		}
		return nil
	})
	return listings, err
}

// RoomState returns the room the caller belongs to, with member presence and
// recent chat history, for clients that just joined or reconnected.
func (r *Rooms) RoomState(userID int64) (*RoomState, []ChatMessage, error) {
	var state *RoomState
	var history []ChatMessage
	err := r.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}
		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrNotInRoom
		}
		room, err := tx.GetRoom(membership.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}

		members, err := tx.ListRoomMembers(room.ID)
		if err != nil {
			return err
		}
		state = &RoomState{ID: room.ID, Title: room.Title, OwnerID: room.OwnerID}
		for _, m := range members {
			p, err := tx.GetPlayerByID(m.PlayerID)
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			state.Members = append(state.Members, Member{
				PlayerID: p.ID,
				Name:     p.Name,
				Online:   p.Online,
			})
		}

		messages, err := tx.ListMessages(room.ID, 100)
		if err != nil {
			return err
		}
		for _, m := range messages {
			history = append(history, ChatMessage{
				SenderID: m.SenderID,
				SentAt:   m.SentAt,
				Text:     m.Text,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return state, history, nil
}

// deleteRoomCascade is the single teardown path for a room and everything
// hanging off it. Every deletion route (explicit leave, presence sweep) goes
// through here.
func deleteRoomCascade(tx *store.Tx, roomID int64) error {
	game, err := tx.GetGameByRoom(roomID)
	if err != nil {
		return err
	}
	if game != nil {
		if err := tx.DeleteCurrentTeam(game.RoomID); err != nil {
			return err
		}
		if err := tx.DeleteTeamsByGame(game.RoomID); err != nil {
			return err
		}
		if err := tx.DeleteGame(game.RoomID); err != nil {
			return err
		}
	}
	if err := tx.DeleteTeamMembershipsByRoom(roomID); err != nil {
		return err
	}
	if err := tx.DeleteMessagesByRoom(roomID); err != nil {
		return err
	}
	if err := tx.DeleteRoomMemberships(roomID); err != nil {
		return err
	}
	return tx.DeleteRoom(roomID)
}
