// Package netstats is the statistics-aggregation collaborator
// GarnetNetwork treats as external (spec.md §1): "counters with
// sample(value) and scalar increment". It is not part of the
// cycle-accurate core; nothing here is consulted by a routing or
// allocation decision.
package netstats

// Sampler is the minimal interface the core's external stats
// collaborator exposes: a running sample that can be added to and read
// back as count/sum/min/max/average, mirroring the histogram fields
// GarnetNetwork.hh accumulates per stat (packets, flits, hops, network
// latency, queueing latency).
type Sampler struct {
	count int64
	sum   float64
	min   float64
	max   float64
	seen  bool
}

// Sample records one observation.
func (s *Sampler) Sample(value float64) {
	s.count++
	s.sum += value
	if !s.seen || value < s.min {
		s.min = value
	}
	if !s.seen || value > s.max {
		s.max = value
	}
	s.seen = true
}

func (s *Sampler) Count() int64 { return s.count }
func (s *Sampler) Sum() float64 { return s.sum }
func (s *Sampler) Min() float64 { return s.min }
func (s *Sampler) Max() float64 { return s.max }

// Average returns sum/count, or 0 if nothing has been sampled.
func (s *Sampler) Average() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// Scalar is a plain monotonically-increasing counter — the "scalar
// increment" half of the interface spec.md §1 names.
type Scalar struct {
	value int64
}

func (c *Scalar) Inc()            { c.value++ }
func (c *Scalar) Add(n int64)     { c.value += n }
func (c *Scalar) Value() int64    { return c.value }

// NetworkStats bundles the per-network counters a GarnetNetwork reports
// through at ejection and at SPIN rotation boundaries: packet/flit
// counts, hop and latency distributions, and SPIN-specific misroute and
// bubble counters.
type NetworkStats struct {
	PacketsReceived Scalar
	FlitsReceived   Scalar

	Hops           Sampler
	NetworkLatency Sampler // cycles from injection to ejection
	QueueLatency   Sampler // cycles spent queued before first departure

	SpinRotations Scalar
	SpinBubbles   Scalar
	SpinMisroute  Scalar
}

// RecordFlitEjected folds one ejected flit's measurements into the
// running stats. hops, networkLatency and queueLatency are read off the
// flit by the caller (this package never imports the core, to keep the
// "external collaborator" boundary from spec.md §1 honest).
func (ns *NetworkStats) RecordFlitEjected(hops int, networkLatency, queueLatency float64) {
	ns.FlitsReceived.Inc()
	ns.Hops.Sample(float64(hops))
	ns.NetworkLatency.Sample(networkLatency)
	ns.QueueLatency.Sample(queueLatency)
}

func (ns *NetworkStats) RecordPacketReceived() { ns.PacketsReceived.Inc() }

func (ns *NetworkStats) RecordSpinRotation(bubbles, misroute int64) {
	ns.SpinRotations.Inc()
	ns.SpinBubbles.Add(bubbles)
	ns.SpinMisroute.Add(misroute)
}
