// Package statestore is a side-channel checkpoint store for SPIN's
// recovery counters. It is never touched from the cycle-accurate
// simulation loop itself — only from explicit checkpoint/restore calls
// a host process makes between runs — and has no bearing on any
// invariant in spec.md §8. Adapted from the bucket-per-concern bbolt
// layout in nursery_store.go: one top-level bucket, fixed-width binary
// records, Update/View transactions.
package statestore

import (
	"encoding/binary"
	"fmt"

	"github.com/coreos/bbolt"
)

var spinBucket = []byte("spin-checkpoint")

var (
	keyTriggerCycle = []byte("trigger-cycle")
	keyMisroute     = []byte("total-misroute")
	keyBubbles      = []byte("total-bubbles")
	keyRotations    = []byte("total-rotations")
)

// Snapshot is the set of SPIN recovery counters worth persisting across
// a host process restart.
type Snapshot struct {
	TriggerCycle int64
	Misroute     int64
	Bubbles      int64
	Rotations    int64
}

// Store wraps a bbolt database holding one SPIN checkpoint.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and
// ensures the checkpoint bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("statestore: opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(spinBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("statestore: initializing bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func putInt64(b *bolt.Bucket, key []byte, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return b.Put(key, buf[:])
}

func getInt64(b *bolt.Bucket, key []byte) int64 {
	v := b.Get(key)
	if len(v) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(v))
}

// Save persists snap, overwriting any prior checkpoint.
func (s *Store) Save(snap Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(spinBucket)
		if err := putInt64(b, keyTriggerCycle, snap.TriggerCycle); err != nil {
			return err
		}
		if err := putInt64(b, keyMisroute, snap.Misroute); err != nil {
			return err
		}
		if err := putInt64(b, keyBubbles, snap.Bubbles); err != nil {
			return err
		}
		return putInt64(b, keyRotations, snap.Rotations)
	})
}

// Load reads back the last saved checkpoint. A never-saved store
// returns a zero Snapshot, not an error.
func (s *Store) Load() (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(spinBucket)
		snap.TriggerCycle = getInt64(b, keyTriggerCycle)
		snap.Misroute = getInt64(b, keyMisroute)
		snap.Bubbles = getInt64(b, keyBubbles)
		snap.Rotations = getInt64(b, keyRotations)
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("statestore: loading checkpoint: %w", err)
	}
	return snap, nil
}
