package garnet

import "testing"

func TestNetworkLinkLatency(t *testing.T) {
	link := NewNetworkLink(InternalLink, 3)
	f := NewFlit(1, 1, 0, 0, HeadTailFlit, RouteInfo{}, 1, false, 0)

	link.Push(f, 10)

	for cycle := Cycle(10); cycle < 13; cycle++ {
		if got := link.Pop(cycle); got != nil {
			t.Fatalf("flit should not be readable before cycle 13, got it at %d", cycle)
		}
	}
	if link.IsEmpty() {
		t.Fatalf("link should report non-empty while a flit is in flight")
	}
	if got := link.Pop(13); got != f {
		t.Fatalf("flit should be readable exactly at push_cycle + latency")
	}
	if !link.IsEmpty() {
		t.Fatalf("link should be empty after draining its only entry")
	}
}

func TestNetworkLinkFIFOOrder(t *testing.T) {
	link := NewNetworkLink(InternalLink, 1)
	f1 := NewFlit(1, 1, 0, 0, HeadFlit, RouteInfo{}, 2, false, 0)
	f2 := NewFlit(2, 1, 0, 0, TailFlit, RouteInfo{}, 2, false, 0)

	link.Push(f1, 0)
	link.Push(f2, 0)

	if got := link.Pop(1); got != f1 {
		t.Fatalf("expected FIFO order: f1 first")
	}
	if got := link.Pop(1); got != f2 {
		t.Fatalf("expected FIFO order: f2 second")
	}
}

func TestNetworkLinkRejectsZeroLatency(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic constructing a zero-latency link")
		}
	}()
	NewNetworkLink(InternalLink, 0)
}

func TestCreditLinkRoundTrip(t *testing.T) {
	link := NewCreditLink(2)
	link.Push(Credit{VC: 1, IsFree: true}, 5)

	if _, ok := link.Pop(6); ok {
		t.Fatalf("credit should not be ready before cycle 7")
	}
	c, ok := link.Pop(7)
	if !ok || c.VC != 1 || !c.IsFree {
		t.Fatalf("expected credit ready at cycle 7, got %+v ok=%v", c, ok)
	}
}
