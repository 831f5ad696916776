package garnet

// saNomination is one inport's stage-1 pick: the single VC (if any) it
// wants to send through the crossbar this cycle.
type saNomination struct {
	inport  int
	vc      int
	outport int
	flit    *Flit
	isHead  bool // true if this grant also performs VC allocation
}

// SwitchAllocator runs the two-stage per-cycle arbitration of spec.md
// §4.5: stage 1 picks at most one ready VC per inport, stage 2 picks
// one winner per outport among the inports that nominated it, with
// round-robin fairness in both stages so no inport is starved while
// continuously nominating a line that is ever granted.
type SwitchAllocator struct {
	vcRR      []int // per-inport: last winning VC, next search starts after it
	inportRR  []int // per-outport: last winning inport, next search starts after it
}

// NewSwitchAllocator constructs a SwitchAllocator for a router with the
// given inport/outport counts.
func NewSwitchAllocator(numInports, numOutports int) *SwitchAllocator {
	vcRR := make([]int, numInports)
	for i := range vcRR {
		vcRR[i] = -1
	}
	inportRR := make([]int, numOutports)
	for i := range inportRR {
		inportRR[i] = -1
	}
	return &SwitchAllocator{vcRR: vcRR, inportRR: inportRR}
}

// Wakeup runs one cycle of arbitration for router and hands winners to
// its CrossbarSwitch via Router.grantSwitch.
func (sa *SwitchAllocator) Wakeup(router *Router, cycle Cycle) {
	noms := sa.stage1(router)
	sa.stage2(router, noms, cycle)
}

func (sa *SwitchAllocator) stage1(router *Router) []saNomination {
	var noms []saNomination
	for inport, iu := range router.inputUnits {
		numVCs := iu.NumVCs()
		if numVCs == 0 {
			continue
		}
		start := (sa.vcRR[inport] + 1 + numVCs) % numVCs
		for i := 0; i < numVCs; i++ {
			vc := (start + i) % numVCs
			if iu.VCIsEmpty(vc) {
				continue
			}
			flit := iu.PeekTopFlit(vc)

			var outport int
			isHead := false
			if assigned, ok := iu.AssignedOutport(vc); ok {
				outport = assigned
			} else if iu.VCState(vc) == VCIdle && flit.IsHead() {
				outport = router.routingUnit.OutportCompute(flit.Route, inport, iu.Direction())
				isHead = true
			} else {
				continue
			}

			ou := router.outputUnits[outport]
			if isHead && ou.VCState(vc) != VCIdle {
				continue
			}
			if !ou.HasCredit(vc) {
				continue
			}

			noms = append(noms, saNomination{inport: inport, vc: vc, outport: outport, flit: flit, isHead: isHead})
			sa.vcRR[inport] = vc
			break
		}
	}
	return noms
}

func (sa *SwitchAllocator) stage2(router *Router, noms []saNomination, cycle Cycle) {
	numOutports := len(router.outputUnits)
	byOutport := make([][]saNomination, numOutports)
	for _, n := range noms {
		byOutport[n.outport] = append(byOutport[n.outport], n)
	}

	for outport, cands := range byOutport {
		if len(cands) == 0 {
			continue
		}
		numInports := len(router.inputUnits)
		start := (sa.inportRR[outport] + 1 + numInports) % numInports

		var winner *saNomination
		for i := 0; i < numInports; i++ {
			idx := (start + i) % numInports
			for j := range cands {
				if cands[j].inport == idx {
					winner = &cands[j]
					break
				}
			}
			if winner != nil {
				break
			}
		}
		if winner == nil {
			continue
		}
		sa.inportRR[outport] = winner.inport
		sa.grant(router, *winner, cycle)
	}
}

func (sa *SwitchAllocator) grant(router *Router, n saNomination, cycle Cycle) {
	ou := router.outputUnits[n.outport]
	iu := router.inputUnits[n.inport]

	ou.DecrementCredit(n.vc)
	if n.isHead {
		iu.MarkAllocated(n.vc, n.outport, cycle)
		ou.SetVCState(VCActive, n.vc, cycle)
	}

	f := iu.GetTopFlit(n.vc, cycle)
	f.Outport = n.outport
	f.OutportDir = router.routingUnit.OutportDirection(n.outport)
	// Hops counts inter-router link traversals only (spec.md §8
	// scenario 1's "hops == 2" for a 2-hop path): ejecting through an
	// ExtOutLink to an NI is not a hop.
	if ou.OutLink() != nil && ou.OutLink().Kind == InternalLink {
		f.IncrementHops()
	}
	f.AdvanceStage(StageST, cycle)

	if f.IsTail() {
		iu.SetVCIdle(n.vc, cycle)
	}

	router.grantSwitch(n.inport, f)
	saLog.Tracef("router %d: granted inport %d vc %d -> outport %d (%s)",
		router.ID(), n.inport, n.vc, n.outport, f)
}
