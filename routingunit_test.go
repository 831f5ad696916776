package garnet

import "testing"

// build2x2RoutingUnit constructs routerID's RoutingUnit in a 2x2 mesh
// (ids: 0=bottom-left, 1=bottom-right, 2=top-left, 3=top-right) with XY
// routing and router 0's port set (Local, East, North), matching
// spec.md §8 scenario 1's topology.
func build2x2RoutingUnit(routerID int) *RoutingUnit {
	ru := NewRoutingUnit(routerID, XYRouting, 2, nil)
	ru.AddInDirection(Local, 0)
	ru.AddInDirection(East, 1)
	ru.AddInDirection(North, 2)
	ru.AddOutDirection(Local, 0)
	ru.AddOutDirection(East, 1)
	ru.AddOutDirection(North, 2)
	ru.AddRoute(NetDest{})
	ru.AddWeight(0)
	ru.AddRoute(NetDest{})
	ru.AddWeight(1)
	ru.AddRoute(NetDest{})
	ru.AddWeight(1)
	return ru
}

func TestOutportComputeXYRoutesEastThenNorth(t *testing.T) {
	ru := build2x2RoutingUnit(0)

	// Router 0 -> router 3 (top-right): dx=1, dy=1. XY routing goes X
	// first, so router 0 should pick East.
	route := RouteInfo{DestRouter: 3}
	outIdx := ru.OutportCompute(route, 0, Local)
	if got := ru.OutportDirection(outIdx); got != East {
		t.Fatalf("expected East first hop from router 0 to router 3, got %s", got)
	}

	// Router 0 -> router 2 (top-left, same column): dx=0, dy=1. XY
	// routing should pick North since the X delta is already zero.
	route = RouteInfo{DestRouter: 2}
	outIdx = ru.OutportCompute(route, 0, Local)
	if got := ru.OutportDirection(outIdx); got != North {
		t.Fatalf("expected North hop from router 0 to router 2, got %s", got)
	}
}

func TestOutportComputeXYLocalDestination(t *testing.T) {
	ru := build2x2RoutingUnit(3)
	route := RouteInfo{DestRouter: 3}
	outIdx := ru.OutportCompute(route, 1, East)
	if got := ru.OutportDirection(outIdx); got != Local {
		t.Fatalf("expected Local outport when already at destination router, got %s", got)
	}
}

func TestLookupTableRoutingTieBreak(t *testing.T) {
	ru := NewRoutingUnit(0, TableRouting, 2, nil)
	ru.AddOutDirection(North, 0)
	ru.AddOutDirection(East, 1)

	dest := NewNetDest(4)
	dest.Add(3)

	north := NewNetDest(4)
	north.Add(3)
	east := NewNetDest(4)
	east.Add(3)

	ru.AddRoute(north)
	ru.AddWeight(1)
	ru.AddRoute(east)
	ru.AddWeight(1)

	candidates := ru.Lookup(0, dest)
	if len(candidates) != 2 {
		t.Fatalf("expected both outports tied on weight 1, got %d candidates", len(candidates))
	}

	route := RouteInfo{NetDest: dest}
	outIdx := ru.OutportCompute(route, -1, Local)
	if got := ru.OutportDirection(outIdx); got != North {
		t.Fatalf("tie-break should favor North over East by direction priority, got %s", got)
	}
}
