package statestore

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	want := Snapshot{TriggerCycle: 100, Misroute: 7, Bubbles: 3, Rotations: 1}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadOnFreshStoreIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != (Snapshot{}) {
		t.Fatalf("expected a zero Snapshot from a never-saved store, got %+v", got)
	}
}

func TestSaveOverwritesPriorCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Save(Snapshot{TriggerCycle: 1, Misroute: 1, Bubbles: 1, Rotations: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := Snapshot{TriggerCycle: 200, Misroute: 4, Bubbles: 9, Rotations: 2}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
