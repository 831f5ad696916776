// Package trace records a compact per-cycle activity log and reads it
// back, and renders deferred flit dumps for trace-level logging. It does
// not replay traffic traces into the network. It is not consulted by any
// routing or allocation decision; it only observes.
package trace

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/kkdai/bstream"
	"github.com/nocsim/garnet"
)

// logClosure defers an expensive Sdump until (and unless) a log line
// actually fires at the configured level, mirroring the pattern
// htlcswitch.go uses around spew.Sdump for its trace-level dumps.
type logClosure func() string

func (c logClosure) String() string { return c() }

// newLogClosure wraps fn so its result is only computed if the log
// line it's passed to is actually emitted.
func newLogClosure(fn func() string) logClosure { return logClosure(fn) }

// DumpFlit renders a flit's full field set for trace-level diagnostics.
func DumpFlit(f *garnet.Flit) logClosure {
	return newLogClosure(func() string { return spew.Sdump(f) })
}

// Recorder packs one fixed-width record per cycle into a compact
// bstream rather than a human-readable log line, so a long run's trace
// stays cheap to retain: (cycle: 48 bits, router id: 16 bits, crossbar
// activity: 16 bits) per router per cycle.
type Recorder struct {
	w *bstream.BStream
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{w: bstream.NewBStreamWriter(0)}
}

// RecordCycle appends one router's cycle activity sample.
func (r *Recorder) RecordCycle(cycle garnet.Cycle, routerID int, crossbarActivity uint64) {
	r.w.WriteBits(uint64(cycle), 48)
	r.w.WriteBits(uint64(routerID), 16)
	r.w.WriteBits(crossbarActivity, 16)
}

// Bytes returns the packed trace buffer.
func (r *Recorder) Bytes() []byte { return r.w.Bytes() }

// Reader replays a Recorder's packed bytes back into individual
// records.
type Reader struct {
	r *bstream.BStream
}

// NewReader wraps raw bytes previously produced by Recorder.Bytes.
func NewReader(b []byte) *Reader {
	return &Reader{r: bstream.NewBStreamReader(b)}
}

// Record is one cycle-activity sample read back from a trace.
type Record struct {
	Cycle            garnet.Cycle
	RouterID         int
	CrossbarActivity uint64
}

// Next reads the next record, or returns an error once the trace is
// exhausted.
func (rd *Reader) Next() (Record, error) {
	cycle, err := rd.r.ReadBits(48)
	if err != nil {
		return Record{}, err
	}
	routerID, err := rd.r.ReadBits(16)
	if err != nil {
		return Record{}, err
	}
	activity, err := rd.r.ReadBits(16)
	if err != nil {
		return Record{}, err
	}
	return Record{Cycle: garnet.Cycle(cycle), RouterID: int(routerID), CrossbarActivity: activity}, nil
}
