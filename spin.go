package garnet

import "github.com/NebulousLabs/fastrand"

// spinPhase tracks where the network-wide SPIN state machine is within
// one periodic firing (spec.md §4.9).
type spinPhase int

const (
	spinIdle spinPhase = iota
	spinQuiescing
	spinResuming
)

// spinRuntime is the mutable state of an in-progress (or not yet
// started) SPIN cycle. SpinConfig, by contrast, never changes after
// construction.
type spinRuntime struct {
	lock  int
	phase spinPhase

	triggerCycle Cycle
	rotateCycle  Cycle
	resumeCycle  Cycle
}

// neighborID returns the router id adjacent to routerID in direction
// dir on a numRows x numCols row-major mesh, or ok=false if that would
// fall outside the mesh.
func neighborID(routerID int, dir Direction, numRows, numCols int) (id int, ok bool) {
	x, y := routerID%numCols, routerID/numCols
	switch dir {
	case East:
		x++
	case West:
		x--
	case North:
		y++
	case South:
		y--
	case Local:
		return routerID, true
	}
	if x < 0 || x >= numCols || y < 0 || y >= numRows {
		return 0, false
	}
	return y*numCols + x, true
}

// validateSpinRing checks spec.md §6's closure rule and the general
// adjacency requirement from §4.9 ("the implementation verifies that
// ring node i+1's router is the downstream neighbor of ring node i's
// router in direction of the next hop"). Ring must already include the
// closing duplicate of its first node.
func validateSpinRing(ring []RingNode, numRows, numCols int) {
	if len(ring) < 2 {
		panicConfig("spin ring must have at least one node plus its closing duplicate")
	}
	if ring[len(ring)-1] != ring[0] {
		panicConfig("spin ring does not close: last node %+v does not match first node %+v", ring[len(ring)-1], ring[0])
	}
	for i := 0; i < len(ring)-1; i++ {
		cur, next := ring[i], ring[i+1]
		wantDir := Opposite(next.Inport)
		gotID, ok := neighborID(cur.RouterID, wantDir, numRows, numCols)
		if !ok || gotID != next.RouterID {
			panicConfig("spin ring node %d (router %d) is not adjacent to node %d (router %d) via direction %s",
				i, cur.RouterID, i+1, next.RouterID, wantDir)
		}
	}
}

// runSpinCheck runs the per-cycle SPIN trigger/quiesce/rotate/resume
// check from inside router's Wakeup (spec.md §2 step 3). It returns
// true when the network has taken over scheduling router's next
// wakeup, telling Router.Wakeup to skip its own self-scheduling this
// cycle.
func (net *GarnetNetwork) runSpinCheck(router *Router, cycle Cycle) bool {
	switch net.spinRun.phase {
	case spinIdle:
		if net.spin.ThresholdCycles <= 0 || cycle%net.spin.ThresholdCycles != 0 {
			return false
		}
		if net.spinRun.lock != -1 {
			panicInvariant("SPIN lock held by router %d while router %d also observed the threshold", net.spinRun.lock, router.ID())
		}
		net.spinRun.lock = router.ID()
		net.spinRun.phase = spinQuiescing
		net.spinRun.triggerCycle = cycle
		net.spinRun.rotateCycle = cycle + 3
		spinLog.Infof("router %d: SPIN triggered at cycle %d, quiescing until %d", router.ID(), cycle, net.spinRun.rotateCycle)
		net.setAllHalt(true)
		net.scheduleAllWakeup(cycle, net.spinRun.rotateCycle)
		return true

	case spinQuiescing:
		if cycle != net.spinRun.rotateCycle {
			return true
		}
		net.chckLinkState()
		net.performRotation(cycle)

		resumeDelta := Cycle(2 * net.spin.Multiplicity)
		if net.spin.Multiplicity == 0 {
			resumeDelta = 1
		}
		net.spinRun.resumeCycle = cycle + resumeDelta
		net.spinRun.phase = spinResuming
		spinLog.Infof("router %d: SPIN rotation complete at cycle %d, resuming at %d", router.ID(), cycle, net.spinRun.resumeCycle)
		net.scheduleAllWakeup(cycle, net.spinRun.resumeCycle)
		return true

	case spinResuming:
		if cycle != net.spinRun.resumeCycle {
			return true
		}
		net.resumeFromSpin(cycle)
		net.spinRun.phase = spinIdle
		net.spinRun.lock = -1
		spinLog.Infof("router %d: SPIN resumed at cycle %d", router.ID(), cycle)
		return false
	}
	return false
}

// performRotation runs one periodic SPIN firing: for every selected VC
// (spec.md §9's resolved open question — one VC per vnet unless
// DrainAllVC), repeat the two-stage rotation rotationCount times.
// rotationCount is drawn once per firing, not once per VC: the source's
// ambiguity here (spec.md §9) is resolved by treating "a uniformly
// random number of rotations" as a property of the SPIN event, applied
// uniformly to every selected VC in it.
func (net *GarnetNetwork) performRotation(cycle Cycle) {
	rotationCount := net.spin.Multiplicity
	if rotationCount == 0 {
		rotationCount = int(fastrand.Intn(10))
	}
	for _, vr := range net.vnets {
		if net.spin.DrainAllVC {
			for vc := vr.Base; vc < vr.Base+vr.Count; vc++ {
				for i := 0; i < rotationCount; i++ {
					net.doSpinRotation(vc, cycle)
				}
			}
			continue
		}
		for i := 0; i < rotationCount; i++ {
			net.doSpinRotation(vr.Base, cycle)
		}
	}
}

// doSpinRotation performs one atomic rotation of VC vc's head-of-line
// flit around every node of the spin ring, in the two stages spec.md
// §4.9 describes. A flit is neither evicted from nor inserted into a
// Local (NI-facing) inport, so this never touches an NI.
func (net *GarnetNetwork) doSpinRotation(vc int, cycle Cycle) {
	ring := net.spin.Ring
	n := len(ring) - 1
	if n <= 0 {
		return
	}

	slots := make([]*Flit, n+1)
	bubbles := 0
	removed := 0

	// forwardProgress/misrouteClassified are the Stage-A classification
	// counts (GarnetNetwork.cc's m_fwd_progress/total_flit_forward_progress
	// bookkeeping) — distinct from misrouteHops below, which is the
	// Stage-B hop-delta penalty (m_total_misroute).
	forwardProgress := 0
	misrouteClassified := 0

	// Stage A: remove.
	for i := 0; i < n; i++ {
		node := ring[i]
		next := ring[i+1]
		if node.Inport == Local || next.Inport == Local {
			continue
		}
		router := net.routers[node.RouterID]
		iu := router.InputUnitByDirection(node.Inport)
		if iu == nil || iu.VCIsEmpty(vc) {
			bubbles++
			continue
		}

		f := iu.PeekTopFlit(vc)
		if f.HopsNeededBeforeSpin != noHopsSentinel || f.HopsNeededAfterSpin != noHopsSentinel {
			panicInvariant("SPIN stage A: router %d inport %s vc %d: hops sentinel already set on %s",
				node.RouterID, node.Inport, vc, f)
		}
		outDir := Opposite(next.Inport)
		outIdx := router.RoutingUnit().OutportIndex(outDir)
		preferred := router.RoutingUnit().Lookup(f.VNet, f.Route.NetDest)
		isForwardProgress := intInSlice(preferred, outIdx)
		if isForwardProgress {
			forwardProgress++
		} else {
			misrouteClassified++
		}

		f.HopsNeededBeforeSpin = router.ComputeHopsRemaining(f)
		iu.EvictForSpin(vc)
		iu.SetVCIdle(vc, cycle)
		if ou := iu.PairedOutputUnit(); ou != nil {
			ou.IncrementCredit(vc)
			ou.SetVCState(VCIdle, vc, cycle)
		}

		slots[i+1] = f
		removed++
		spinLog.Tracef("SPIN stage A: router %d inport %s vc %d evicted %s (forward_progress=%v)",
			node.RouterID, node.Inport, vc, f, isForwardProgress)
	}
	net.totalBubbles += int64(bubbles)
	net.totalForwardProgress += int64(forwardProgress)
	net.totalMisrouteClassified += int64(misrouteClassified)

	// Stage B: insert.
	inserted := 0
	misrouteHops := int64(0)
	for i := 1; i <= n; i++ {
		f := slots[i]
		if f == nil {
			continue
		}
		node := ring[i]
		router := net.routers[node.RouterID]
		iu := router.InputUnitByDirection(node.Inport)
		inportIdx := router.RoutingUnit().InportIndex(node.Inport)

		outIdx := router.RoutingUnit().OutportCompute(f.Route, inportIdx, node.Inport)
		f.Outport = outIdx
		f.OutportDir = router.RoutingUnit().OutportDirection(outIdx)
		f.IncrementHops()

		iu.InsertFlitDirect(vc, f)
		iu.MarkAllocated(vc, outIdx, cycle)
		iu.SetVCActive(vc, cycle)
		if ou := iu.PairedOutputUnit(); ou != nil {
			ou.DecrementCredit(vc)
			ou.SetVCState(VCActive, vc, cycle)
		}

		after := router.ComputeHopsRemaining(f)
		f.HopsNeededAfterSpin = after
		if after > f.HopsNeededBeforeSpin {
			misrouteHops += int64(after - f.HopsNeededBeforeSpin)
		}
		f.HopsNeededBeforeSpin = noHopsSentinel
		f.HopsNeededAfterSpin = noHopsSentinel
		inserted++

		spinLog.Tracef("SPIN stage B: router %d inport %s vc %d inserted %s", node.RouterID, node.Inport, vc, f)
	}
	net.totalMisroute += misrouteHops

	if inserted != removed {
		panicInvariant("SPIN rotation on vc %d: stage A removed %d flits but stage B inserted %d", vc, removed, inserted)
	}

	if net.spinRotationHook != nil {
		net.spinRotationHook(int64(bubbles), misrouteHops)
	}
}

// SetSpinRotationHook registers fn to be called after every completed
// rotation with that rotation's bubble count and hop-delta misroute
// penalty — the seam an embedding host uses to feed a stats
// collaborator (spec.md §1's "counters with sample(value) and scalar
// increment") from real SPIN activity instead of polling the
// cumulative totals below.
func (net *GarnetNetwork) SetSpinRotationHook(fn func(bubbles, misroute int64)) {
	net.spinRotationHook = fn
}

// resumeFromSpin clears halt network-wide and advances the stage
// timestamp of every flit still resident in a non-local inport VC, so
// SPIN's own duration is never charged to flit latency (spec.md §4.9
// "Resume").
func (net *GarnetNetwork) resumeFromSpin(cycle Cycle) {
	net.setAllHalt(false)
	bump := Cycle(2 * net.spin.Multiplicity)

	for _, r := range net.routers {
		for _, iu := range r.inputUnits {
			if iu.Direction() == Local {
				continue
			}
			for _, vc := range iu.vcs {
				for _, f := range vc.queue {
					f.AdvanceStage(StageSA, cycle+bump)
				}
			}
		}
	}
}

func intInSlice(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// TotalMisroute returns the cumulative hop-count penalty SPIN rotations
// have imposed (spec.md §4.9 Stage B).
func (net *GarnetNetwork) TotalMisroute() int64 { return net.totalMisroute }

// TotalBubbles returns the cumulative count of empty ring slots observed
// across every rotation (spec.md Glossary "Bubble").
func (net *GarnetNetwork) TotalBubbles() int64 { return net.totalBubbles }

// TotalForwardProgress returns the cumulative count of Stage-A evictions
// classified as forward progress: the ring's next hop was in the
// evicted flit's preferred-outport set (spec.md §1 item 4 "forward-
// progress vs. misroute accounting").
func (net *GarnetNetwork) TotalForwardProgress() int64 { return net.totalForwardProgress }

// TotalMisrouteClassified returns the cumulative count of Stage-A
// evictions classified as a misroute: the ring's next hop was outside
// the evicted flit's preferred-outport set. This is a per-rotation
// classification count, distinct from TotalMisroute's hop-delta
// penalty accumulated in Stage B.
func (net *GarnetNetwork) TotalMisrouteClassified() int64 { return net.totalMisrouteClassified }
