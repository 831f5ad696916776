package garnet

import "fmt"

// Cycle is a simulated clock tick. The core never reads a wall clock;
// every notion of time is a Cycle handed down by the enclosing
// Scheduler (see scheduler.go).
type Cycle int64

// FlitType identifies a flit's position within its packet.
type FlitType int

const (
	HeadFlit FlitType = iota
	BodyFlit
	TailFlit
	HeadTailFlit // single-flit packet: both head and tail
)

func (t FlitType) String() string {
	switch t {
	case HeadFlit:
		return "HEAD"
	case BodyFlit:
		return "BODY"
	case TailFlit:
		return "TAIL"
	case HeadTailFlit:
		return "HEAD_TAIL"
	default:
		return "UNKNOWN"
	}
}

// Stage names the pipeline stage a flit currently occupies: route
// computation, VC allocation, switch allocation, switch traversal, or
// link traversal. Stages are strictly monotone in normal operation;
// SPIN is the one path that resets a flit back to SA with a fresh
// timestamp (spec.md §9, Design Notes, last bullet).
type Stage int

const (
	StageRC Stage = iota
	StageVA
	StageSA
	StageST
	StageLT
)

func (s Stage) String() string {
	switch s {
	case StageRC:
		return "RC"
	case StageVA:
		return "VA"
	case StageSA:
		return "SA"
	case StageST:
		return "ST"
	case StageLT:
		return "LT"
	default:
		return "?"
	}
}

// noHopsSentinel is the "unset" value for Flit.HopsNeededBeforeSpin and
// Flit.HopsNeededAfterSpin.
const noHopsSentinel = -1

// NetDest is a destination bitmap: one bit per NI id. It backs
// table-driven routing (RoutingUnit's per-outport routing table entry)
// and the preferred-outport lookup SPIN uses to classify a rotation as
// forward progress or misroute.
type NetDest struct {
	bits []uint64
}

// NewNetDest returns an empty destination bitmap sized for numNodes NIs.
func NewNetDest(numNodes int) NetDest {
	return NetDest{bits: make([]uint64, (numNodes+63)/64)}
}

// Add marks ni as a destination.
func (d *NetDest) Add(ni int) {
	d.bits[ni/64] |= 1 << uint(ni%64)
}

// IsSet reports whether ni is a destination.
func (d NetDest) IsSet(ni int) bool {
	if ni/64 >= len(d.bits) {
		return false
	}
	return d.bits[ni/64]&(1<<uint(ni%64)) != 0
}

// Intersects reports whether d and other share at least one destination.
func (d NetDest) Intersects(other NetDest) bool {
	n := len(d.bits)
	if len(other.bits) < n {
		n = len(other.bits)
	}
	for i := 0; i < n; i++ {
		if d.bits[i]&other.bits[i] != 0 {
			return true
		}
	}
	return false
}

// RouteInfo carries a flit's routing identity: where it is going, where
// it came from, which virtual network it belongs to, and the
// destination bitmap table-driven routing consults.
type RouteInfo struct {
	DestNI       int
	DestRouter   int
	SrcRouter    int
	VNet         int
	NetDest      NetDest
}

// Flit is the smallest unit of flow control. Identity fields are set at
// creation and never change; the remaining fields are mutated by the
// pipeline stages listed in spec.md §2/§4, and by SPIN when it rotates
// a flit mid-flight.
type Flit struct {
	ID        uint64
	PacketID  uint64
	VNet      int
	VC        int
	Type      FlitType
	Route     RouteInfo
	SizeFlits int
	Marked    bool // tagged for termination/latency measurement

	// Mutable pipeline state.
	Outport    int
	OutportDir Direction
	Stage      Stage
	StageCycle Cycle
	Hops       int

	// SPIN-only bookkeeping, sentinel -1 ("unset") outside of an
	// in-progress rotation. Invariant: both must be -1 at the start
	// and end of every doSpinRotation(vc) call (spec.md §4.9, §8 invariant 6
	// "monotone hops" depends on this being reset every time).
	HopsNeededBeforeSpin int
	HopsNeededAfterSpin  int

	// InjectCycle records when the flit was injected, used to compute
	// end-to-end latency at ejection for the stats collaborator.
	InjectCycle Cycle
}

// NewFlit constructs a flit with SPIN bookkeeping reset and stage set to
// RC, as if freshly produced by an NI on injection.
func NewFlit(id, packetID uint64, vnet, vc int, typ FlitType, route RouteInfo, size int, marked bool, injectCycle Cycle) *Flit {
	return &Flit{
		ID:                   id,
		PacketID:             packetID,
		VNet:                 vnet,
		VC:                   vc,
		Type:                 typ,
		Route:                route,
		SizeFlits:            size,
		Marked:               marked,
		Stage:                StageRC,
		StageCycle:           injectCycle,
		HopsNeededBeforeSpin: noHopsSentinel,
		HopsNeededAfterSpin:  noHopsSentinel,
		InjectCycle:          injectCycle,
	}
}

// AdvanceStage moves the flit to stage s, timestamped at cycle. Callers
// outside of SPIN must only ever move forward through
// RC -> VA -> SA -> ST -> LT; SPIN is the sole exception, resetting a
// resident flit back to StageSA with a cycle pushed past the rotation
// delay (spec.md §4.9 "Resume").
func (f *Flit) AdvanceStage(s Stage, cycle Cycle) {
	f.Stage = s
	f.StageCycle = cycle
}

// IncrementHops increments the flit's hop counter. Hops is required to
// be strictly non-decreasing (spec.md §8 invariant 6); this is the only
// place that mutates it.
func (f *Flit) IncrementHops() { f.Hops++ }

func (f *Flit) String() string {
	return fmt.Sprintf("flit{id=%d pkt=%d vnet=%d vc=%d type=%s outport=%d hops=%d stage=%s@%d}",
		f.ID, f.PacketID, f.VNet, f.VC, f.Type, f.Outport, f.Hops, f.Stage, f.StageCycle)
}

// IsHead reports whether this flit begins a packet (HEAD or HEAD_TAIL).
func (f *Flit) IsHead() bool { return f.Type == HeadFlit || f.Type == HeadTailFlit }

// IsTail reports whether this flit ends a packet (TAIL or HEAD_TAIL).
func (f *Flit) IsTail() bool { return f.Type == TailFlit || f.Type == HeadTailFlit }

// Credit is the return token that flows upstream on a CreditLink,
// telling the upstream OutputUnit that a downstream VC slot freed up
// (IsFree == true means "the VC buffer consumer is now empty", used for
// VC deallocation bookkeeping).
type Credit struct {
	VC     int
	IsFree bool
}
