package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fourline/store"
)

func TestCreateRoomValidation(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	require.NoError(t, f.players.Connect(alice))

	// No display name yet.
	_, err := f.rooms.CreateRoom(alice, "Lobby")
	assert.ErrorIs(err, ErrPlayerUnnamed)

	require.NoError(t, f.players.SetName(alice, "Alice"))

	_, err = f.rooms.CreateRoom(alice, "")
	assert.ErrorIs(err, ErrEmptyTitle)

	// A title that is nothing but markup sanitizes to empty.
	_, err = f.rooms.CreateRoom(alice, "<script></script>")
	assert.ErrorIs(err, ErrEmptyTitle)

	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	assert.Equal("player_joined", event.Type)

	// Already a member of a room.
	_, err = f.rooms.CreateRoom(alice, "Another")
	assert.ErrorIs(err, ErrAlreadyInRoom)
}

func TestCreateRoomOwnerIsMember(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	f.connectNamed(t, alice, "Alice")

	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)

	state, _, err := f.rooms.RoomState(alice)
	require.NoError(t, err)
	assert.Equal(t, event.RoomID, state.ID)
	assert.Equal(t, f.playerID(t, alice), state.OwnerID)
	require.Len(t, state.Members, 1)
	assert.Equal(t, "Alice", state.Members[0].Name)
}

func TestJoinRoomValidation(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	f.connectNamed(t, alice, "Alice")
	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	roomID := event.RoomID

	require.NoError(t, f.players.Connect(bob))

	_, err = f.rooms.JoinRoom(bob, roomID+100)
	assert.ErrorIs(err, ErrRoomNotFound)

	_, err = f.rooms.JoinRoom(bob, roomID)
	assert.ErrorIs(err, ErrPlayerUnnamed)

	require.NoError(t, f.players.SetName(bob, "Bob"))
	_, err = f.rooms.JoinRoom(bob, roomID)
	assert.NoError(err)

	_, err = f.rooms.JoinRoom(bob, roomID)
	assert.ErrorIs(err, ErrAlreadyInRoom)
}

func TestLeaveRoomNoopWhenNotMember(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	f.connectNamed(t, alice, "Alice")

	events, err := f.rooms.LeaveRoom(alice)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLeaveRoomSoleMemberCascades(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	f.connectNamed(t, alice, "Alice")
	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	roomID := event.RoomID

	_, err = f.engine.CreateGame(alice)
	require.NoError(t, err)
	_, err = f.rooms.SendMessage(alice, "hello")
	require.NoError(t, err)

	_, err = f.rooms.LeaveRoom(alice)
	require.NoError(t, err)

	// No orphan rows of any kind remain.
	err = f.store.Atomic(func(tx *store.Tx) error {
		room, err := tx.GetRoom(roomID)
		require.NoError(t, err)
		assert.Nil(room)

		game, err := tx.GetGameByRoom(roomID)
		require.NoError(t, err)
		assert.Nil(game)

		teams, err := tx.ListTeamsByGame(roomID)
		require.NoError(t, err)
		assert.Empty(teams)

		current, err := tx.GetCurrentTeam(roomID)
		require.NoError(t, err)
		assert.Nil(current)

		members, err := tx.ListRoomMembers(roomID)
		require.NoError(t, err)
		assert.Empty(members)

		memberships, err := tx.ListTeamMembershipsByRoom(roomID)
		require.NoError(t, err)
		assert.Empty(memberships)

		messages, err := tx.ListMessages(roomID, 10)
		require.NoError(t, err)
		assert.Empty(messages)
		return nil
	})
	require.NoError(t, err)

	// The player itself survives room teardown.
	assert.NotZero(f.playerID(t, alice))
}

func TestLeaveRoomTransfersOwnership(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	f.connectNamed(t, alice, "Alice")
	f.connectNamed(t, bob, "Bob")

	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	roomID := event.RoomID
	_, err = f.rooms.JoinRoom(bob, roomID)
	require.NoError(t, err)

	events, err := f.rooms.LeaveRoom(alice)
	require.NoError(t, err)

	// player_left followed by owner_changed.
	require.Len(t, events, 2)
	assert.Equal("player_left", events[0].Type)
	assert.Equal("owner_changed", events[1].Type)

	state, _, err := f.rooms.RoomState(bob)
	require.NoError(t, err)
	assert.Equal(roomID, state.ID)
	assert.Equal(f.playerID(t, bob), state.OwnerID)
	assert.Len(state.Members, 1)
}

func TestLeaveRoomNonOwnerKeepsOwner(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	f.connectNamed(t, alice, "Alice")
	f.connectNamed(t, bob, "Bob")

	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	_, err = f.rooms.JoinRoom(bob, event.RoomID)
	require.NoError(t, err)

	events, err := f.rooms.LeaveRoom(bob)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "player_left", events[0].Type)

	state, _, err := f.rooms.RoomState(alice)
	require.NoError(t, err)
	assert.Equal(t, f.playerID(t, alice), state.OwnerID)
}

func TestSendMessage(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	f.connectNamed(t, alice, "Alice")

	_, err := f.rooms.SendMessage(alice, "hello")
	assert.ErrorIs(err, ErrNotInRoom)

	_, err = f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)

	_, err = f.rooms.SendMessage(alice, "")
	assert.ErrorIs(err, ErrEmptyMessage)

	event, err := f.rooms.SendMessage(alice, "hello there")
	require.NoError(t, err)
	assert.Equal("message", event.Type)

	_, history, err := f.rooms.RoomState(alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal("hello there", history[0].Text)
	assert.Equal(f.playerID(t, alice), history[0].SenderID)
}

func TestListRooms(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	listings, err := f.rooms.ListRooms()
	require.NoError(t, err)
	assert.Empty(listings)

	f.connectNamed(t, alice, "Alice")
	f.connectNamed(t, bob, "Bob")
	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)
	_, err = f.rooms.JoinRoom(bob, event.RoomID)
	require.NoError(t, err)

	listings, err = f.rooms.ListRooms()
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal("Lobby", listings[0].Title)
	assert.Equal(2, listings[0].MemberCount)
}

func TestSetNameValidation(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)

	err := f.players.SetName(alice, "Alice")
	assert.ErrorIs(err, ErrUnknownPlayer)

	require.NoError(t, f.players.Connect(alice))
	err = f.players.SetName(alice, "   ")
	assert.ErrorIs(err, ErrEmptyName)

	assert.NoError(f.players.SetName(alice, "Alice"))
}
