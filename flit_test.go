package garnet

import "testing"

func TestNetDestAddAndIntersect(t *testing.T) {
	a := NewNetDest(130)
	a.Add(5)
	a.Add(64)
	a.Add(129)

	if !a.IsSet(5) || !a.IsSet(64) || !a.IsSet(129) {
		t.Fatalf("expected bits 5, 64, 129 set")
	}
	if a.IsSet(6) {
		t.Fatalf("bit 6 should not be set")
	}

	b := NewNetDest(130)
	b.Add(64)
	if !a.Intersects(b) {
		t.Fatalf("expected a and b to intersect on bit 64")
	}

	c := NewNetDest(130)
	c.Add(1)
	if a.Intersects(c) {
		t.Fatalf("a and c share no bits, Intersects should be false")
	}
}

func TestFlitAdvanceStageAndHops(t *testing.T) {
	route := RouteInfo{DestRouter: 3, SrcRouter: 0, VNet: 0}
	f := NewFlit(1, 1, 0, 0, HeadTailFlit, route, 1, false, 0)

	if f.Stage != StageRC {
		t.Fatalf("expected fresh flit to start at StageRC, got %s", f.Stage)
	}
	if f.HopsNeededBeforeSpin != noHopsSentinel || f.HopsNeededAfterSpin != noHopsSentinel {
		t.Fatalf("expected SPIN bookkeeping to start at sentinel -1")
	}

	f.AdvanceStage(StageVA, 5)
	if f.Stage != StageVA || f.StageCycle != 5 {
		t.Fatalf("AdvanceStage did not update stage/cycle")
	}

	f.IncrementHops()
	f.IncrementHops()
	if f.Hops != 2 {
		t.Fatalf("expected Hops == 2, got %d", f.Hops)
	}
}

func TestFlitIsHeadIsTail(t *testing.T) {
	route := RouteInfo{}
	head := NewFlit(1, 1, 0, 0, HeadFlit, route, 4, false, 0)
	body := NewFlit(2, 1, 0, 0, BodyFlit, route, 4, false, 0)
	tail := NewFlit(3, 1, 0, 0, TailFlit, route, 4, false, 0)
	single := NewFlit(4, 2, 0, 0, HeadTailFlit, route, 1, false, 0)

	if !head.IsHead() || head.IsTail() {
		t.Fatalf("head flit misclassified")
	}
	if body.IsHead() || body.IsTail() {
		t.Fatalf("body flit misclassified")
	}
	if !tail.IsTail() || tail.IsHead() {
		t.Fatalf("tail flit misclassified")
	}
	if !single.IsHead() || !single.IsTail() {
		t.Fatalf("HEAD_TAIL flit must be both head and tail")
	}
}
