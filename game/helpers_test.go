package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fourline/store"
)

// seqRand replays a fixed sequence of choices, reduced modulo n, so label
// draws and starting-team picks are deterministic in tests.
type seqRand struct {
	values []int
	i      int
}

func (r *seqRand) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)]
	r.i++
	return v % n
}

type fixture struct {
	store   *store.SQLiteStore
	players *Players
	rooms   *Rooms
	engine  *Engine
}

func newFixture(t *testing.T, rng Rand, rows, cols int) *fixture {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &fixture{
		store:   s,
		players: NewPlayers(s),
		rooms:   NewRooms(s),
		engine:  NewEngine(s, rng, rows, cols),
	}
}

// connectNamed runs the connect hook and names the player.
func (f *fixture) connectNamed(t *testing.T, userID int64, name string) {
	t.Helper()
	require.NoError(t, f.players.Connect(userID))
	require.NoError(t, f.players.SetName(userID, name))
}

func (f *fixture) playerID(t *testing.T, userID int64) int64 {
	t.Helper()
	var id int64
	err := f.store.Atomic(func(tx *store.Tx) error {
		player, err := tx.GetPlayerByUserID(userID)
		if err != nil {
			return err
		}
		require.NotNil(t, player)
		id = player.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

// gameSnapshot reads the game state for the given room outside any op.
func (f *fixture) gameSnapshot(t *testing.T, roomID int64) *GameState {
	t.Helper()
	var state *GameState
	err := f.store.Atomic(func(tx *store.Tx) error {
		var err error
		state, err = gameState(tx, roomID)
		return err
	})
	require.NoError(t, err)
	return state
}
