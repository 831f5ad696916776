package garnet

// InputUnit buffers flits arriving on one inbound link, holding one VC
// buffer per VC the router is configured with. It is exclusively owned
// by its Router; VC buffers are exclusively owned by their InputUnit.
type InputUnit struct {
	id        int
	direction Direction

	inLink     *NetworkLink
	creditLink *CreditLink

	// pairedOutputUnit is the upstream OutputUnit this inport's credit
	// link returns to, set only for internal (router-to-router) links.
	// SPIN's ring rotation mutates it directly rather than going through
	// the credit link, since a rotation's credit effects must be atomic
	// within the same cycle rather than delayed by credit_link_latency.
	pairedOutputUnit *OutputUnit

	vcs []*virtualChannel
}

// NewInputUnit constructs an InputUnit with numVCs freshly-idle VC
// buffers, each sized by capacityForVC, so data and control vnets can
// carry different buffer depths.
func NewInputUnit(id int, dir Direction, numVCs int, capacityForVC func(vc int) int) *InputUnit {
	vcs := make([]*virtualChannel, numVCs)
	for i := range vcs {
		vcs[i] = newVirtualChannel(capacityForVC(i))
	}
	return &InputUnit{id: id, direction: dir, vcs: vcs}
}

func (iu *InputUnit) ID() int             { return iu.id }
func (iu *InputUnit) Direction() Direction { return iu.direction }

func (iu *InputUnit) SetInLink(l *NetworkLink)            { iu.inLink = l }
func (iu *InputUnit) SetCreditLink(l *CreditLink)         { iu.creditLink = l }
func (iu *InputUnit) SetPairedOutputUnit(ou *OutputUnit)  { iu.pairedOutputUnit = ou }
func (iu *InputUnit) PairedOutputUnit() *OutputUnit       { return iu.pairedOutputUnit }

// Wakeup drains at most one flit (if any is ready) from the inbound
// link and places it in the VC named by the flit's VC field. It fails
// with an InvariantViolation if that VC is already full.
func (iu *InputUnit) Wakeup(cycle Cycle) {
	if iu.inLink == nil {
		return
	}
	f := iu.inLink.Pop(cycle)
	if f == nil {
		return
	}
	vc := iu.vcs[f.VC]
	if vc.isFull() {
		panicInvariant("router inport %d (%s): VC %d overflow on arrival", iu.id, iu.direction, f.VC)
	}
	vc.enqueue(f)
	routerLog.Tracef("inport %d (%s) buffered %s", iu.id, iu.direction, f)
}

// VCIsEmpty reports whether VC vc currently holds no flit.
func (iu *InputUnit) VCIsEmpty(vc int) bool { return iu.vcs[vc].isEmpty() }

// PeekTopFlit returns the flit at the head of VC vc without removing it.
func (iu *InputUnit) PeekTopFlit(vc int) *Flit { return iu.vcs[vc].peekTop() }

// GetTopFlit pops the flit at the head of VC vc and returns one credit
// upstream on the credit-return link, mirroring the newly-freed buffer
// slot back to the paired OutputUnit's credit counter.
func (iu *InputUnit) GetTopFlit(vc int, cycle Cycle) *Flit {
	f := iu.vcs[vc].popTop()
	if iu.creditLink != nil {
		isFree := iu.vcs[vc].isEmpty() && f.IsTail()
		iu.creditLink.Push(Credit{VC: vc, IsFree: isFree}, cycle)
	}
	return f
}

func (iu *InputUnit) SetVCActive(vc int, cycle Cycle) { iu.vcs[vc].setActive(cycle) }
func (iu *InputUnit) SetVCIdle(vc int, cycle Cycle)   { iu.vcs[vc].setIdle(cycle) }

func (iu *InputUnit) VCState(vc int) VCState { return iu.vcs[vc].state }

func (iu *InputUnit) NumVCs() int { return len(iu.vcs) }

// AssignedOutport returns the outport this VC is currently allocated
// to (set by a HEAD grant or by a SPIN insertion, cleared when the TAIL
// frees the VC), and
// whether it is currently assigned at all.
func (iu *InputUnit) AssignedOutport(vc int) (int, bool) {
	o := iu.vcs[vc].outport
	return o, o != -1
}

// MarkAllocated records that VC vc has been granted outport by this
// cycle's switch allocation (a HEAD's VC-allocation step). Subsequent
// BODY/TAIL flits of the same packet read this back via
// AssignedOutport instead of being independently routed.
func (iu *InputUnit) MarkAllocated(vc, outport int, cycle Cycle) {
	iu.vcs[vc].setAllocated(outport, cycle)
}

// EvictForSpin unconditionally pops the flit at the head of VC vc,
// without the normal tail-triggered credit bookkeeping GetTopFlit
// performs — SPIN removes exactly one flit per ring node regardless of
// its type. The caller is responsible for the credit/VC-idle side
// effects, typically via PairedOutputUnit.
func (iu *InputUnit) EvictForSpin(vc int) *Flit {
	return iu.vcs[vc].popTop()
}

// InsertFlitDirect places a flit directly into VC vc, bypassing the
// inbound link. This is used exclusively by the SPIN rotation, which
// moves flits router-to-router atomically rather than through the
// ordinary link-latency path.
func (iu *InputUnit) InsertFlitDirect(vc int, f *Flit) {
	if iu.vcs[vc].isFull() {
		panicInvariant("SPIN insert: inport %d (%s) VC %d overflow", iu.id, iu.direction, vc)
	}
	iu.vcs[vc].enqueue(f)
}
