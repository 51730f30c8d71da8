package game

import (
	"context"
	"log"
	"time"

	"fourline/store"
)

// Sweeper periodically deletes rooms whose members are all offline. It is
// the only caller-less mutation in the system and reuses the same cascading
// teardown as an explicit leave.
type Sweeper struct {
	store    store.Store
	interval time.Duration
}

func NewSweeper(s store.Store, interval time.Duration) *Sweeper {
	return &Sweeper{store: s, interval: interval}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(); err != nil {
				log.Printf("Presence sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce runs one pass as a single atomic operation. A room survives if
// any of its members is online.
func (s *Sweeper) SweepOnce() error {
	var deleted int
	err := s.store.Atomic(func(tx *store.Tx) error {
		roomIDs, err := tx.ListRoomIDs()
		if err != nil {
			return err
		}
		for _, roomID := range roomIDs {
			online, err := tx.CountOnlineMembers(roomID)
			if err != nil {
				return err
			}
			if online > 0 {
				continue
			}
			if err := deleteRoomCascade(tx, roomID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err == nil && deleted > 0 {
		log.Printf("Presence sweep deleted %d inactive room(s)", deleted)
	}
	return err
}
