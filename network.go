package garnet

// RingNode is one stop on a SPIN ring: a router id and the direction of
// the inport that ring traffic enters through at that router.
type RingNode struct {
	RouterID int
	Inport   Direction
}

// SpinConfig is the fixed, init-time configuration of the SPIN
// deadlock-recovery protocol.
type SpinConfig struct {
	Enabled         bool
	ThresholdCycles Cycle
	Multiplicity    int
	DrainAllVC      bool

	// Ring is the closed cyclic sequence of ring nodes, with the first
	// node duplicated at the end (length N+1 for an N-node ring), so a
	// traversal can walk node i to node i+1 without wrapping logic.
	Ring []RingNode
}

// VnetVCRange describes which VC indices belong to one virtual network,
// used by SPIN to select "VC 0 of each vnet" when DrainAllVC is false.
type VnetVCRange struct {
	Base  int
	Count int
}

// GarnetNetwork owns every router, every NI-facing link, and the SPIN
// runtime state. It is the single mutable value the whole simulation
// runs through — no entity in this package holds ambient global state
// of its own.
type GarnetNetwork struct {
	NumRows int
	NumCols int

	routers []*Router
	vnets   []VnetVCRange

	spin     SpinConfig
	spinRun  spinRuntime

	markedInjected uint64
	markedReceived uint64

	totalMisroute           int64
	totalBubbles            int64
	totalForwardProgress    int64
	totalMisrouteClassified int64

	spinRotationHook func(bubbles, misroute int64)

	scheduler Scheduler
}

// NewGarnetNetwork constructs an empty network over a numRows x numCols
// mesh of router ids, with vnets describing the VC-index range owned by
// each virtual network (used by SPIN VC selection).
func NewGarnetNetwork(numRows, numCols int, vnets []VnetVCRange, spin SpinConfig, sched Scheduler) *GarnetNetwork {
	net := &GarnetNetwork{
		NumRows:   numRows,
		NumCols:   numCols,
		vnets:     vnets,
		spin:      spin,
		scheduler: sched,
	}
	net.spinRun.lock = -1
	if spin.Enabled {
		validateSpinRing(spin.Ring, numRows, numCols)
	}
	return net
}

// AddRouter registers router into the network and binds it back to its
// owner, so its Wakeup can reach SPIN state and the shared scheduler.
func (net *GarnetNetwork) AddRouter(r *Router) {
	r.bindNetwork(net, net.scheduler)
	net.routers = append(net.routers, r)
}

func (net *GarnetNetwork) Router(id int) *Router { return net.router(id) }
func (net *GarnetNetwork) NumRouters() int       { return len(net.routers) }

// router looks up routerID, raising a ConfigError rather than index-
// panicking if the topology builder names a router id that was never
// registered with AddRouter. Construction-API callers are the one
// place in this package where a caller-supplied id reaches a slice
// index directly, so every one of them routes through here (spec.md §7:
// malformed topology wiring is a fatal ConfigError, caught at init,
// like every other construction-time check in this file).
func (net *GarnetNetwork) router(routerID int) *Router {
	if routerID < 0 || routerID >= len(net.routers) {
		panicConfig("no such router id %d (network has %d routers)", routerID, len(net.routers))
	}
	return net.routers[routerID]
}

// MakeExtInLink wires an NI's injection link into router dest's inport
// dir. Ext-in links carry no routing table entry of their own, so this
// has no routingEntry parameter, unlike MakeExtOutLink/MakeInternalLink.
func (net *GarnetNetwork) MakeExtInLink(routerDest int, dir Direction, link *NetworkLink, creditLink *CreditLink, numVCs int, capacityForVC func(int) int) *InputUnit {
	return net.router(routerDest).AddInPort(dir, link, creditLink, numVCs, capacityForVC)
}

// MakeExtOutLink wires router src's outport dir to an NI's ejection
// link, with routingEntry as the routing-table bit this outport serves
// (an ejection outport's entry is normally just its own NI's bit) and
// weight its tie-break weight.
func (net *GarnetNetwork) MakeExtOutLink(routerSrc int, dir Direction, link *NetworkLink, creditLink *CreditLink, routingEntry NetDest, weight, numVCs int, capacityForVC func(int) int) *OutputUnit {
	return net.router(routerSrc).AddOutPort(dir, link, creditLink, routingEntry, weight, numVCs, capacityForVC)
}

// MakeInternalLink wires router src's outport srcDir to router dst's
// inport dstDir, pairing the OutputUnit and InputUnit for SPIN's direct
// credit/state bypass.
func (net *GarnetNetwork) MakeInternalLink(
	routerSrc int, srcDir Direction,
	routerDst int, dstDir Direction,
	link *NetworkLink, creditLink *CreditLink,
	routingEntry NetDest, weight, numVCs int, capacityForVC func(int) int,
) {
	ou := net.router(routerSrc).AddOutPort(srcDir, link, creditLink, routingEntry, weight, numVCs, capacityForVC)
	iu := net.router(routerDst).AddInPort(dstDir, link, creditLink, numVCs, capacityForVC)
	iu.SetPairedOutputUnit(ou)
}

// FinalizeTopology must be called once every port has been registered;
// it sizes each router's SwitchAllocator for its final port counts.
func (net *GarnetNetwork) FinalizeTopology() {
	for _, r := range net.routers {
		r.finalizeAllocator()
	}
}

// InputUnitByDirection finds the inport on r whose direction is dir.
// Used by SPIN ring traversal, which addresses ring nodes by direction
// rather than inport index.
func (r *Router) InputUnitByDirection(dir Direction) *InputUnit {
	for _, iu := range r.inputUnits {
		if iu.Direction() == dir {
			return iu
		}
	}
	return nil
}

// --- Marked-flit bookkeeping ---

func (net *GarnetNetwork) RecordMarkedInjected() { net.markedInjected++ }

func (net *GarnetNetwork) RecordMarkedReceived() {
	net.markedReceived++
	if net.markedReceived > net.markedInjected {
		panicInvariant("marked_received (%d) exceeded marked_injected (%d)", net.markedReceived, net.markedInjected)
	}
}

func (net *GarnetNetwork) MarkedInjected() uint64 { return net.markedInjected }
func (net *GarnetNetwork) MarkedReceived() uint64 { return net.markedReceived }

// AllMarkedDelivered reports whether every injected marked flit has been
// received, and none remain resident in any router.
func (net *GarnetNetwork) AllMarkedDelivered() bool {
	if net.markedReceived != net.markedInjected {
		return false
	}
	for _, r := range net.routers {
		if r.MarkedFlitsResident() > 0 {
			return false
		}
	}
	return true
}

// --- Saturation watchdog ---

const (
	saturationLatencyThreshold = 1000
	cycleQuota                 = 1_000_000
)

// CheckSaturation evaluates the watchdog gate and, if it fires, signals
// the enclosing scheduler with the matching exit reason. avgMarkedLatency
// is supplied by the caller, an external NI/stats collaborator this core
// never computes for itself.
func (net *GarnetNetwork) CheckSaturation(cycle Cycle, avgMarkedLatency float64) {
	switch {
	case avgMarkedLatency > saturationLatencyThreshold:
		net.scheduler.ExitSim(ExitLatencyThreshold)
	case cycle > cycleQuota:
		net.scheduler.ExitSim(ExitCycleQuota)
	case net.AllMarkedDelivered() && net.markedInjected > 0:
		net.scheduler.ExitSim(ExitMarkedReceived)
	}
}

// --- Halt / lock helpers ---

func (net *GarnetNetwork) setAllHalt(v bool) {
	for _, r := range net.routers {
		r.SetHalt(v)
	}
}

// scheduleAllWakeup schedules every router to wake at absolute cycle
// target, bypassing each router's own per-cycle self-scheduling — used
// exclusively by SPIN to hold every router quiesced in lockstep.
func (net *GarnetNetwork) scheduleAllWakeup(now, target Cycle) {
	delta := target - now
	if delta < 1 {
		delta = 1
	}
	for _, r := range net.routers {
		net.scheduler.ScheduleEvent(r, delta)
	}
}

// Lock reports the id of the router currently driving a SPIN rotation,
// or -1 if none.
func (net *GarnetNetwork) Lock() int { return net.spinRun.lock }

// chckLinkState verifies that while a SPIN rotation is in progress,
// every network-link buffer is empty. It panics with an
// InvariantViolation if any is found non-empty.
func (net *GarnetNetwork) chckLinkState() {
	for _, r := range net.routers {
		for _, ou := range r.outputUnits {
			if ou.OutLink() != nil && !ou.OutLink().IsEmpty() {
				panicInvariant("router %d outport %d (%s): link non-empty during SPIN quiescence",
					r.ID(), ou.ID(), ou.Direction())
			}
		}
	}
}
