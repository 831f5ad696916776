package spinring

import (
	"strings"
	"testing"

	"github.com/nocsim/garnet"
)

func TestParseClosesRingOnEastNeighbor(t *testing.T) {
	// Starts with spec.md §8 scenario 3's ring [(0,E),(1,N),(3,W),(2,S)]
	// and adds a trailing (1,E) node. The file lists everything after the
	// implicit first node (0,East); its last token is router 1, so the
	// parser should prepend (0,East).
	cfg := "1 N 3 W 2 S 1 E"
	ring, err := Parse(strings.NewReader(cfg), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ring) != 6 {
		t.Fatalf("expected 5 distinct nodes + 1 closing duplicate = 6, got %d", len(ring))
	}
	if ring[0] != (garnet.RingNode{RouterID: 0, Inport: garnet.East}) {
		t.Fatalf("expected implicit first node (0,East), got %+v", ring[0])
	}
	if ring[len(ring)-1] != ring[0] {
		t.Fatalf("ring must close by duplicating the first node at the end")
	}
}

func TestParseRejectsNonClosingRing(t *testing.T) {
	cfg := "1 N 2 S" // last router is 2, but num_rows is 3 here: neither rule matches
	_, err := Parse(strings.NewReader(cfg), 3)
	if err == nil {
		t.Fatalf("expected an error for a ring that cannot close on router 0")
	}
}

func TestParseRejectsIllegalDirection(t *testing.T) {
	_, err := Parse(strings.NewReader("1 Q"), 2)
	if err == nil {
		t.Fatalf("expected an error for an illegal direction token")
	}
}

func TestParseRejectsOddTokenCount(t *testing.T) {
	_, err := Parse(strings.NewReader("1 N 2"), 2)
	if err == nil {
		t.Fatalf("expected an error for an odd token count")
	}
}
