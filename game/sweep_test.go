package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fourline/store"
)

func TestSweepDeletesFullyOfflineRooms(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	sweeper := NewSweeper(f.store, time.Hour)

	// Room 1: Alice and Bob, both will go offline.
	f.connectNamed(t, alice, "Alice")
	f.connectNamed(t, bob, "Bob")
	event, err := f.rooms.CreateRoom(alice, "Ghost town")
	require.NoError(t, err)
	offlineRoom := event.RoomID
	_, err = f.rooms.JoinRoom(bob, offlineRoom)
	require.NoError(t, err)
	_, err = f.engine.CreateGame(alice)
	require.NoError(t, err)
	_, err = f.rooms.SendMessage(alice, "anyone here?")
	require.NoError(t, err)

	// Room 2: Carol stays online.
	f.connectNamed(t, carol, "Carol")
	event, err = f.rooms.CreateRoom(carol, "Alive")
	require.NoError(t, err)
	aliveRoom := event.RoomID

	f.players.Disconnect(alice)
	f.players.Disconnect(bob)

	require.NoError(t, sweeper.SweepOnce())

	err = f.store.Atomic(func(tx *store.Tx) error {
		room, err := tx.GetRoom(offlineRoom)
		require.NoError(t, err)
		assert.Nil(room)

		game, err := tx.GetGameByRoom(offlineRoom)
		require.NoError(t, err)
		assert.Nil(game)

		teams, err := tx.ListTeamsByGame(offlineRoom)
		require.NoError(t, err)
		assert.Empty(teams)

		messages, err := tx.ListMessages(offlineRoom, 10)
		require.NoError(t, err)
		assert.Empty(messages)

		kept, err := tx.GetRoom(aliveRoom)
		require.NoError(t, err)
		assert.NotNil(kept)
		return nil
	})
	require.NoError(t, err)
}

func TestSweepSparesRoomWithOneOnlineMember(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	sweeper := NewSweeper(f.store, time.Hour)

	f.connectNamed(t, alice, "Alice")
	f.connectNamed(t, bob, "Bob")
	event, err := f.rooms.CreateRoom(alice, "Half asleep")
	require.NoError(t, err)
	_, err = f.rooms.JoinRoom(bob, event.RoomID)
	require.NoError(t, err)

	// Only Alice disconnects; Bob alone keeps the room alive.
	f.players.Disconnect(alice)

	require.NoError(t, sweeper.SweepOnce())

	err = f.store.Atomic(func(tx *store.Tx) error {
		room, err := tx.GetRoom(event.RoomID)
		require.NoError(t, err)
		assert.NotNil(t, room)
		members, err := tx.ListRoomMembers(event.RoomID)
		require.NoError(t, err)
		assert.Len(t, members, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestSweepIsIdempotentOnEmptyStore(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	sweeper := NewSweeper(f.store, time.Hour)

	require.NoError(t, sweeper.SweepOnce())
	require.NoError(t, sweeper.SweepOnce())
}

func TestReconnectMarksPlayerOnline(t *testing.T) {
	f := newFixture(t, &seqRand{values: []int{0}}, 6, 7)
	sweeper := NewSweeper(f.store, time.Hour)

	f.connectNamed(t, alice, "Alice")
	event, err := f.rooms.CreateRoom(alice, "Lobby")
	require.NoError(t, err)

	f.players.Disconnect(alice)
	// Reconnect flips the flag back before the sweep fires.
	require.NoError(t, f.players.Connect(alice))

	require.NoError(t, sweeper.SweepOnce())

	err = f.store.Atomic(func(tx *store.Tx) error {
		room, err := tx.GetRoom(event.RoomID)
		require.NoError(t, err)
		assert.NotNil(t, room)
		return nil
	})
	require.NoError(t, err)
}
