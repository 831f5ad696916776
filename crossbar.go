package garnet

// crossbarWinner is one (inport, flit) pair the SwitchAllocator handed
// to the crossbar this cycle.
type crossbarWinner struct {
	inport int
	flit   *Flit
}

// CrossbarSwitch collects this cycle's SA winners and forwards each to
// its destination OutputUnit, which pushes it onto the outbound link.
// Activity is counted per transfer (spec.md §4.6).
type CrossbarSwitch struct {
	winners  []crossbarWinner
	activity uint64
}

func NewCrossbarSwitch() *CrossbarSwitch { return &CrossbarSwitch{} }

// GrantSwitch records a winning (inport, flit) pair for this cycle's
// traversal. Called by SwitchAllocator.grant.
func (cx *CrossbarSwitch) GrantSwitch(inport int, f *Flit) {
	cx.winners = append(cx.winners, crossbarWinner{inport: inport, flit: f})
}

// Wakeup emits every winner recorded this cycle to its OutputUnit.
func (cx *CrossbarSwitch) Wakeup(router *Router, cycle Cycle) {
	for _, w := range cx.winners {
		ou := router.outputUnits[w.flit.Outport]
		ou.Insert(w.flit, cycle)
		cx.activity++
		xbarLog.Tracef("router %d: crossbar moved inport %d -> outport %d: %s",
			router.ID(), w.inport, w.flit.Outport, w.flit)
	}
	cx.winners = cx.winners[:0]
}

// Activity returns the cumulative number of flit transfers this
// crossbar has performed.
func (cx *CrossbarSwitch) Activity() uint64 { return cx.activity }
