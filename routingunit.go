package garnet

// RoutingAlgorithm selects how RoutingUnit.OutportCompute resolves a
// flit's next outport. Recovered from original_source/ (gem5's
// m_routing_algorithm selector), since spec.md only says routing for
// mesh topologies is "XY (or a custom policy identified by
// routing_algorithm)" without naming the selector values.
type RoutingAlgorithm int

const (
	TableRouting RoutingAlgorithm = iota
	XYRouting
	CustomRouting
)

// CustomRouteCompute is a pluggable outport-resolution policy, invoked
// in place of the built-in table/XY algorithms when a RoutingUnit is
// constructed with RoutingAlgorithm == CustomRouting.
type CustomRouteCompute func(route RouteInfo, inport int, inportDir Direction) int

// directionPriority is the fixed tie-break ordering spec.md §4.4
// requires ("ties broken by weight then by direction ordering").
var directionPriority = []Direction{North, East, South, West, Local}

func directionRank(d Direction) int {
	for i, dd := range directionPriority {
		if dd == d {
			return i
		}
	}
	return len(directionPriority)
}

// RoutingUnit computes a flit's next outport. It maintains bidirectional
// inport/outport direction<->index maps, a per-outport NetDest routing
// table entry, and a per-outport link weight (spec.md §4.4).
type RoutingUnit struct {
	routerID  int
	algorithm RoutingAlgorithm
	numCols   int // mesh width, used by XY routing
	custom    CustomRouteCompute

	inportDirToIdx  map[Direction]int
	inportIdxToDir  []Direction
	outportDirToIdx map[Direction]int
	outportIdxToDir []Direction

	routingTable []NetDest
	weights      []int
}

// NewRoutingUnit constructs a RoutingUnit for routerID, with numCols
// used by the XY algorithm (ignored by Table/Custom). custom may be nil
// unless algorithm == CustomRouting.
func NewRoutingUnit(routerID int, algorithm RoutingAlgorithm, numCols int, custom CustomRouteCompute) *RoutingUnit {
	return &RoutingUnit{
		routerID:        routerID,
		algorithm:       algorithm,
		numCols:         numCols,
		custom:          custom,
		inportDirToIdx:  make(map[Direction]int),
		outportDirToIdx: make(map[Direction]int),
	}
}

func (ru *RoutingUnit) AddInDirection(dir Direction, idx int) {
	ru.inportDirToIdx[dir] = idx
	for len(ru.inportIdxToDir) <= idx {
		ru.inportIdxToDir = append(ru.inportIdxToDir, "")
	}
	ru.inportIdxToDir[idx] = dir
}

func (ru *RoutingUnit) AddOutDirection(dir Direction, idx int) {
	ru.outportDirToIdx[dir] = idx
	for len(ru.outportIdxToDir) <= idx {
		ru.outportIdxToDir = append(ru.outportIdxToDir, "")
	}
	ru.outportIdxToDir[idx] = dir
}

// AddRoute appends a routing table entry for the outport it corresponds
// to positionally (the n-th call corresponds to outport n).
func (ru *RoutingUnit) AddRoute(entry NetDest) { ru.routingTable = append(ru.routingTable, entry) }

// AddWeight appends the link weight for the outport it corresponds to
// positionally.
func (ru *RoutingUnit) AddWeight(w int) { ru.weights = append(ru.weights, w) }

func (ru *RoutingUnit) InportIndex(dir Direction) int  { return ru.inportDirToIdx[dir] }
func (ru *RoutingUnit) OutportIndex(dir Direction) int { return ru.outportDirToIdx[dir] }
func (ru *RoutingUnit) OutportDirection(idx int) Direction { return ru.outportIdxToDir[idx] }
func (ru *RoutingUnit) InportDirection(idx int) Direction  { return ru.inportIdxToDir[idx] }

// Lookup returns the set of preferred outports for a flit in the given
// vnet headed to dest: those outports whose table entry intersects
// dest, tied for lowest weight. SPIN (spec.md §4.9) uses this set to
// classify a rotation as forward progress (the ring's next hop is in
// this set) or a misroute.
func (ru *RoutingUnit) Lookup(vnet int, dest NetDest) []int {
	best := -1
	var candidates []int
	for outport, entry := range ru.routingTable {
		if !entry.Intersects(dest) {
			continue
		}
		w := ru.weights[outport]
		switch {
		case best == -1 || w < best:
			best = w
			candidates = []int{outport}
		case w == best:
			candidates = append(candidates, outport)
		}
	}
	return candidates
}

// OutportCompute deterministically returns exactly one outport for
// route, given the inport the flit arrived on. The inport is passed
// only to custom policies; the table and XY algorithms do not consult it.
func (ru *RoutingUnit) OutportCompute(route RouteInfo, inport int, inportDir Direction) int {
	switch ru.algorithm {
	case XYRouting:
		return ru.outportComputeXY(route)
	case CustomRouting:
		if ru.custom == nil {
			panicInvariant("router %d: CustomRouting selected with no CustomRouteCompute set", ru.routerID)
		}
		return ru.custom(route, inport, inportDir)
	default:
		return ru.outportComputeTable(route)
	}
}

func (ru *RoutingUnit) outportComputeTable(route RouteInfo) int {
	candidates := ru.Lookup(route.VNet, route.NetDest)
	if len(candidates) == 0 {
		panicInvariant("router %d: no routing table entry matches destination", ru.routerID)
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if directionRank(ru.outportIdxToDir[c]) < directionRank(ru.outportIdxToDir[best]) {
			best = c
		}
	}
	return best
}

// outportComputeXY implements dimension-order (X-then-Y) routing over a
// row-major mesh: router ids increase left-to-right, then row-by-row,
// exactly as Router::compute_hops_remaining assumes in original_source/.
func (ru *RoutingUnit) outportComputeXY(route RouteInfo) int {
	myX, myY := ru.routerID%ru.numCols, ru.routerID/ru.numCols
	destX, destY := route.DestRouter%ru.numCols, route.DestRouter/ru.numCols

	var dir Direction
	switch {
	case destX > myX:
		dir = East
	case destX < myX:
		dir = West
	case destY > myY:
		dir = North
	case destY < myY:
		dir = South
	default:
		dir = Local
	}
	idx, ok := ru.outportDirToIdx[dir]
	if !ok {
		panicInvariant("router %d: XY routing chose direction %q with no such outport", ru.routerID, dir)
	}
	return idx
}
