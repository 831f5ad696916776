package garnet

import "testing"

// build2x2ForSpin wires a full 2x2 mesh (both directions of all 4
// edges) with XY routing and one VC, and returns the network; its four
// routers are reachable by id through net.routers.
func build2x2ForSpin(t *testing.T) *GarnetNetwork {
	t.Helper()
	vnets := []VnetVCRange{{Base: 0, Count: 1}}
	net := NewGarnetNetwork(2, 2, vnets, SpinConfig{}, nil)

	for id := 0; id < 4; id++ {
		net.AddRouter(NewRouter(id, 2, XYRouting, nil))
	}

	capacity := func(int) int { return 4 }
	full := NewNetDest(4)
	for i := 0; i < 4; i++ {
		full.Add(i)
	}

	wire := func(srcID int, srcDir Direction, dstID int, dstDir Direction) {
		link := NewNetworkLink(InternalLink, 1)
		credit := NewCreditLink(1)
		net.MakeInternalLink(srcID, srcDir, dstID, dstDir, link, credit, full, 1, 1, capacity)
	}

	// Edges: 0-1 (East/West), 1-3 (North/South), 3-2 (West/East), 2-0 (South/North).
	wire(0, East, 1, West)
	wire(1, West, 0, East)
	wire(1, North, 3, South)
	wire(3, South, 1, North)
	wire(3, West, 2, East)
	wire(2, East, 3, West)
	wire(2, South, 0, North)
	wire(0, North, 2, South)

	net.FinalizeTopology()
	return net
}

// ringFor2x2 is a closed ring consistent with build2x2ForSpin's wiring
// and this package's row-major (id = y*numCols+x) coordinate
// convention: the physical cycle 0 -> 1 -> 3 -> 2 -> 0.
func ringFor2x2() []RingNode {
	return []RingNode{
		{RouterID: 0, Inport: North},
		{RouterID: 1, Inport: West},
		{RouterID: 3, Inport: South},
		{RouterID: 2, Inport: East},
		{RouterID: 0, Inport: North},
	}
}

func TestValidateSpinRingAcceptsConsistentRing(t *testing.T) {
	validateSpinRing(ringFor2x2(), 2, 2) // must not panic
}

func TestValidateSpinRingRejectsBrokenClosure(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on a ring that does not close")
		}
	}()
	broken := []RingNode{
		{RouterID: 0, Inport: North},
		{RouterID: 1, Inport: West},
		{RouterID: 0, Inport: South}, // wrong: doesn't match the required closing duplicate
	}
	validateSpinRing(broken, 2, 2)
}

func TestDoSpinRotationConservesFlitsAndAdvancesOneNode(t *testing.T) {
	net := build2x2ForSpin(t)
	net.spin.Ring = ringFor2x2()

	ring := net.spin.Ring
	n := len(ring) - 1

	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		node := ring[i]
		router := net.routers[node.RouterID]
		iu := router.InputUnitByDirection(node.Inport)
		if iu == nil {
			t.Fatalf("no inport %s on router %d", node.Inport, node.RouterID)
		}
		route := RouteInfo{DestRouter: node.RouterID, SrcRouter: node.RouterID, VNet: 0, NetDest: NewNetDest(4)}
		route.NetDest.Add(node.RouterID)
		f := NewFlit(uint64(100+i), uint64(100+i), 0, 0, HeadTailFlit, route, 1, false, 0)
		iu.InsertFlitDirect(0, f)
		ids[i] = f.ID
	}

	net.doSpinRotation(0, 50)

	for i := 0; i < n; i++ {
		nextNode := ring[(i+1)%n]
		router := net.routers[nextNode.RouterID]
		iu := router.InputUnitByDirection(nextNode.Inport)
		if iu.VCIsEmpty(0) {
			t.Fatalf("expected a flit at ring node %d (router %d, %s) after rotation, found none",
				(i+1)%n, nextNode.RouterID, nextNode.Inport)
		}
		got := iu.PeekTopFlit(0)
		if got.ID != ids[i] {
			t.Fatalf("expected flit %d to have rotated to node %d, found flit %d", ids[i], (i+1)%n, got.ID)
		}
		if got.Hops != 1 {
			t.Fatalf("expected rotation to increment hops by 1, got %d", got.Hops)
		}
		if got.HopsNeededBeforeSpin != noHopsSentinel || got.HopsNeededAfterSpin != noHopsSentinel {
			t.Fatalf("expected SPIN bookkeeping fields reset to sentinel after rotation")
		}
	}
}

func TestDoSpinRotationCountsBubbles(t *testing.T) {
	net := build2x2ForSpin(t)
	net.spin.Ring = ringFor2x2()

	// Leave every ring VC empty: the whole rotation should be bubbles.
	before := net.totalBubbles
	net.doSpinRotation(0, 10)
	n := len(net.spin.Ring) - 1
	if net.totalBubbles-before != int64(n) {
		t.Fatalf("expected %d bubbles from an all-empty rotation, got %d", n, net.totalBubbles-before)
	}
}
