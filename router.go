package garnet

// Router aggregates one node's InputUnits, OutputUnits, RoutingUnit,
// SwitchAllocator and CrossbarSwitch, and drives their per-cycle
// wakeup in the fixed order spec.md §2/§5 requires: inputs drained,
// then credits drained, then SPIN (if enabled), then switch
// allocation, then crossbar traversal.
type Router struct {
	id int

	numCols int // mesh width, for Manhattan hop counting

	inputUnits  []*InputUnit
	outputUnits []*OutputUnit
	routingUnit *RoutingUnit
	swAlloc     *SwitchAllocator
	crossbar    *CrossbarSwitch

	halt bool

	net       *GarnetNetwork
	scheduler Scheduler
}

// NewRouter constructs a router with the given id, positioned at
// (id % numCols, id / numCols) in a row-major mesh (used only by XY
// routing and hop counting; table/custom routing ignore it).
func NewRouter(id, numCols int, algorithm RoutingAlgorithm, custom CustomRouteCompute) *Router {
	return &Router{
		id:          id,
		numCols:     numCols,
		routingUnit: NewRoutingUnit(id, algorithm, numCols, custom),
		crossbar:    NewCrossbarSwitch(),
	}
}

func (r *Router) ID() int { return r.id }

// bindNetwork attaches the owning network and scheduler. Called once
// at topology-construction time.
func (r *Router) bindNetwork(net *GarnetNetwork, sched Scheduler) {
	r.net = net
	r.scheduler = sched
}

// AddInPort registers a new inport in direction dir, backed by inLink
// and returning credits on creditLink. numVCs and capacityForVC size
// its VC buffers.
func (r *Router) AddInPort(dir Direction, inLink *NetworkLink, creditLink *CreditLink, numVCs int, capacityForVC func(int) int) *InputUnit {
	idx := len(r.inputUnits)
	iu := NewInputUnit(idx, dir, numVCs, capacityForVC)
	iu.SetInLink(inLink)
	iu.SetCreditLink(creditLink)
	r.inputUnits = append(r.inputUnits, iu)
	r.routingUnit.AddInDirection(dir, idx)
	return iu
}

// AddOutPort registers a new outport in direction dir, backed by
// outLink and receiving credit returns on creditLink, with routingEntry
// as its table entry and weight as its tie-break weight.
func (r *Router) AddOutPort(dir Direction, outLink *NetworkLink, creditLink *CreditLink, routingEntry NetDest, weight int, numVCs int, capacityForVC func(int) int) *OutputUnit {
	idx := len(r.outputUnits)
	ou := NewOutputUnit(idx, dir, numVCs, capacityForVC)
	ou.SetOutLink(outLink)
	ou.SetCreditLink(creditLink)
	r.outputUnits = append(r.outputUnits, ou)
	r.routingUnit.AddRoute(routingEntry)
	r.routingUnit.AddWeight(weight)
	r.routingUnit.AddOutDirection(dir, idx)
	return ou
}

// finalizeAllocator must be called once all in/out ports are registered
// (topology construction is complete) so the SwitchAllocator is sized
// for the router's final port counts.
func (r *Router) finalizeAllocator() {
	r.swAlloc = NewSwitchAllocator(len(r.inputUnits), len(r.outputUnits))
}

func (r *Router) NumInports() int  { return len(r.inputUnits) }
func (r *Router) NumOutports() int { return len(r.outputUnits) }

func (r *Router) InputUnit(i int) *InputUnit   { return r.inputUnits[i] }
func (r *Router) OutputUnit(i int) *OutputUnit { return r.outputUnits[i] }
func (r *Router) RoutingUnit() *RoutingUnit    { return r.routingUnit }

func (r *Router) Halted() bool   { return r.halt }
func (r *Router) SetHalt(v bool) { r.halt = v }

// grantSwitch hands a winning (inport, flit) pair to this router's
// crossbar. Called only by SwitchAllocator.
func (r *Router) grantSwitch(inport int, f *Flit) { r.crossbar.GrantSwitch(inport, f) }

// ComputeHopsRemaining returns the Manhattan distance, in a row-major
// mesh, from this router to f's destination router — ported from
// Router::compute_hops_remaining in original_source/.
func (r *Router) ComputeHopsRemaining(f *Flit) int {
	myX, myY := r.id%r.numCols, r.id/r.numCols
	destX, destY := f.Route.DestRouter%r.numCols, f.Route.DestRouter/r.numCols
	dx := destX - myX
	if dx < 0 {
		dx = -dx
	}
	dy := destY - myY
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// RouteCompute resolves the outport a flit would use leaving this
// router, having arrived on inport/inportDir. Exposed for SPIN's
// Stage B re-route (spec.md §4.9) in addition to normal VA use inside
// the SwitchAllocator.
func (r *Router) RouteCompute(route RouteInfo, inport int, inportDir Direction) int {
	return r.routingUnit.OutportCompute(route, inport, inportDir)
}

// MarkedFlitsResident counts marked flits currently buffered in any of
// this router's input VCs (spec.md §4.10 termination condition).
func (r *Router) MarkedFlitsResident() int {
	n := 0
	for _, iu := range r.inputUnits {
		for _, vc := range iu.vcs {
			for _, f := range vc.queue {
				if f.Marked {
					n++
				}
			}
		}
	}
	return n
}

// Wakeup runs one cycle of this router's pipeline, in the fixed order
// spec.md §2 requires. If SPIN is enabled on the owning network, its
// quiesce/rotate/resume state machine runs between the credit drain
// and switch allocation, and may take over this router's scheduling
// for the cycle (see GarnetNetwork.runSpinCheck).
func (r *Router) Wakeup(cycle Cycle) {
	for _, iu := range r.inputUnits {
		iu.Wakeup(cycle)
	}
	for _, ou := range r.outputUnits {
		ou.Wakeup(cycle)
	}

	scheduledByNetwork := false
	if r.net != nil && r.net.spin.Enabled {
		scheduledByNetwork = r.net.runSpinCheck(r, cycle)
	}

	if !r.halt {
		r.swAlloc.Wakeup(r, cycle)
		r.crossbar.Wakeup(r, cycle)
	}

	if !scheduledByNetwork && r.scheduler != nil {
		r.scheduler.ScheduleEvent(r, 1)
	}
}
