package garnet

// OutputUnit tracks, per VC, the allocation state and the number of
// free downstream buffer slots ("credits") this router believes are
// available. Credit state for (outport, vc) is exclusively owned by the
// OutputUnit but mirrors the downstream InputUnit's free-slot count —
// the credit protocol (InputUnit.GetTopFlit pushing a Credit,
// OutputUnit.Wakeup draining it) maintains that mirror (spec.md §3).
type OutputUnit struct {
	id        int
	direction Direction

	outLink    *NetworkLink
	creditLink *CreditLink

	credits []int
	states  []VCState
}

// NewOutputUnit constructs an OutputUnit with numVCs entries, each
// credit counter initialized to capacityForVC (the downstream VC starts
// with all slots free).
func NewOutputUnit(id int, dir Direction, numVCs int, capacityForVC func(vc int) int) *OutputUnit {
	credits := make([]int, numVCs)
	states := make([]VCState, numVCs)
	for i := range credits {
		credits[i] = capacityForVC(i)
		states[i] = VCIdle
	}
	return &OutputUnit{id: id, direction: dir, credits: credits, states: states}
}

func (ou *OutputUnit) ID() int             { return ou.id }
func (ou *OutputUnit) Direction() Direction { return ou.direction }

func (ou *OutputUnit) SetOutLink(l *NetworkLink)    { ou.outLink = l }
func (ou *OutputUnit) SetCreditLink(l *CreditLink)  { ou.creditLink = l }
func (ou *OutputUnit) OutLink() *NetworkLink        { return ou.outLink }

// HasCredit reports whether VC vc has at least one free downstream
// slot.
func (ou *OutputUnit) HasCredit(vc int) bool { return ou.credits[vc] > 0 }

// DecrementCredit accounts for a flit being sent on VC vc. It panics
// with an InvariantViolation on underflow: sending without a credit is
// a protocol violation, not a runtime condition (spec.md §9 "scoped
// acquisition" helper).
func (ou *OutputUnit) DecrementCredit(vc int) {
	if ou.credits[vc] <= 0 {
		panicInvariant("credit underflow on outport %d (%s) VC %d", ou.id, ou.direction, vc)
	}
	ou.credits[vc]--
}

// IncrementCredit accounts for a credit returned from downstream.
func (ou *OutputUnit) IncrementCredit(vc int) {
	ou.credits[vc]++
}

func (ou *OutputUnit) SetVCState(state VCState, vc int, _ Cycle) { ou.states[vc] = state }
func (ou *OutputUnit) VCState(vc int) VCState                    { return ou.states[vc] }

// Wakeup drains credits returned on the credit-return link and folds
// them into this outport's counters. Per spec.md §2/§5, this runs
// before switch allocation each cycle so freed credits are visible to
// this cycle's SA.
func (ou *OutputUnit) Wakeup(cycle Cycle) {
	if ou.creditLink == nil {
		return
	}
	for {
		c, ok := ou.creditLink.Pop(cycle)
		if !ok {
			break
		}
		ou.IncrementCredit(c.VC)
		if c.IsFree {
			ou.SetVCState(VCIdle, c.VC, cycle)
		}
		xbarLog.Tracef("outport %d (%s) credit returned for VC %d (free=%v)", ou.id, ou.direction, c.VC, c.IsFree)
	}
}

// Insert pushes f onto the outgoing NetworkLink with the link's
// configured latency. Callers must not call this while the router is
// halted (spec.md §4.7: halt suppresses any flit departure from this
// router's OutputUnits) — Router enforces that gate before calling
// Insert.
func (ou *OutputUnit) Insert(f *Flit, cycle Cycle) {
	ou.outLink.Push(f, cycle)
}
