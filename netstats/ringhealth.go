package netstats

// RingHealth maintains a decaying view of which spin-ring nodes have
// recently produced a misroute, so an operator can see which part of
// the ring is under stress without scanning full rotation logs.
// Adapted from the lnd router's missionControl decay-map pattern
// (routing/missionControl.failedEdges), but keyed on simulated cycles
// rather than wall-clock time, since this whole package only ever
// observes simulated time.
type RingHealth struct {
	decayWindow int64 // cycles after which a flagged node is forgotten
	flagged     map[int]int64 // ring node index -> cycle it was flagged
}

// NewRingHealth constructs a tracker that forgets a flagged node after
// decayWindow cycles.
func NewRingHealth(decayWindow int64) *RingHealth {
	return &RingHealth{
		decayWindow: decayWindow,
		flagged:     make(map[int]int64),
	}
}

// Flag records that ring node idx produced a misroute at cycle.
func (rh *RingHealth) Flag(idx int, cycle int64) {
	rh.flagged[idx] = cycle
}

// IsFlagged reports whether ring node idx was flagged within the decay
// window as of cycle, pruning any entry that has aged out.
func (rh *RingHealth) IsFlagged(idx int, cycle int64) bool {
	t, ok := rh.flagged[idx]
	if !ok {
		return false
	}
	if cycle-t > rh.decayWindow {
		delete(rh.flagged, idx)
		return false
	}
	return true
}

// FlaggedCount returns the number of ring nodes currently flagged as of
// cycle, pruning aged-out entries along the way.
func (rh *RingHealth) FlaggedCount(cycle int64) int {
	n := 0
	for idx, t := range rh.flagged {
		if cycle-t > rh.decayWindow {
			delete(rh.flagged, idx)
			continue
		}
		n++
	}
	return n
}
