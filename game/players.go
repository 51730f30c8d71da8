package game

import (
	"errors"
	"log"

	"fourline/auth"
	"fourline/store"
)

var (
	ErrEmptyName     = errors.New("name must not be empty")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Players owns the player lifecycle: creation on first connect, the online
// flag, and display names. Player rows are never deleted.
type Players struct {
	store store.Store
}

func NewPlayers(s store.Store) *Players {
	return &Players{store: s}
}

// Connect creates the player on first connection, or marks an existing one
// online.
func (p *Players) Connect(userID int64) error {
	return p.store.Atomic(func(tx *store.Tx) error {
		updated, err := tx.SetPlayerOnline(userID, true)
		if err != nil {
			return err
		}
		if !updated {
			_, err = tx.CreatePlayer(userID, true)
		}
		return err
	})
}

// Disconnect marks the player offline. It never fails outwardly: session
// teardown must not be blocked, so anomalies are only logged.
func (p *Players) Disconnect(userID int64) {
	err := p.store.Atomic(func(tx *store.Tx) error {
		updated, err := tx.SetPlayerOnline(userID, false)
		if err != nil {
			return err
		}
		if !updated {
			log.Printf("Disconnected player not found for user %d", userID)
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to mark user %d offline: %v", userID, err)
	}
}

func (p *Players) SetName(userID int64, name string) error {
	name = auth.SanitizeString(name)
	if name == "" {
		return ErrEmptyName
	}
	return p.store.Atomic(func(tx *store.Tx) error {
		player, err := tx.GetPlayerByUserID(userID)
		if err != nil {
			return err
		}
		if player == nil {
			return ErrUnknownPlayer
		}
		return tx.SetPlayerName(player.ID, name)
	})
}

// requirePlayer resolves the caller's player row inside an operation.
func requirePlayer(tx *store.Tx, userID int64) (*store.Player, error) {
	player, err := tx.GetPlayerByUserID(userID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrUnknownPlayer
	}
	return player, nil
}
