package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAtomicCommitsOnNil(t *testing.T) {
	s := newTestStore(t)

	err := s.Atomic(func(tx *Tx) error {
		_, err := tx.CreatePlayer(1, true)
		return err
	})
	require.NoError(t, err)

	err = s.Atomic(func(tx *Tx) error {
		player, err := tx.GetPlayerByUserID(1)
		require.NoError(t, err)
		assert.NotNil(t, player)
		return nil
	})
	require.NoError(t, err)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.Atomic(func(tx *Tx) error {
		if _, err := tx.CreatePlayer(1, true); err != nil {
			return err
		}
		if _, err := tx.CreateRoom("Lobby", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Neither write survives the failed transaction.
	err = s.Atomic(func(tx *Tx) error {
		player, err := tx.GetPlayerByUserID(1)
		require.NoError(t, err)
		assert.Nil(t, player)

		ids, err := tx.ListRoomIDs()
		require.NoError(t, err)
		assert.Empty(t, ids)
		return nil
	})
	require.NoError(t, err)
}

func TestMissingRowsAreNilNotError(t *testing.T) {
	s := newTestStore(t)

	err := s.Atomic(func(tx *Tx) error {
		player, err := tx.GetPlayerByUserID(99)
		require.NoError(t, err)
		assert.Nil(t, player)

		room, err := tx.GetRoom(99)
		require.NoError(t, err)
		assert.Nil(t, room)

		game, err := tx.GetGameByRoom(99)
		require.NoError(t, err)
		assert.Nil(t, game)

		current, err := tx.GetCurrentTeam(99)
		require.NoError(t, err)
		assert.Nil(t, current)
		return nil
	})
	require.NoError(t, err)

	user, err := s.GetUserByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateUserRoundTrip(t *testing.T) {
	s := newTestStore(t)

	createdID, err := s.CreateUser("alice", "hash")
	require.NoError(t, err)
	require.NotZero(t, createdID)

	byName, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, createdID, byName.ID)

	byID, err := s.GetUserByID(createdID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)
}
