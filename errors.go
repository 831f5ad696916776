package garnet

import (
	goerrors "github.com/go-errors/errors"
)

// ConfigError reports a malformed static configuration discovered at
// init time: an unparseable SPIN ring file, an illegal direction token,
// or a ring that does not close on the physical mesh. Construction
// fails before any cycle runs; there is no recovery path.
type ConfigError struct {
	Err *goerrors.Error
}

func (e *ConfigError) Error() string { return e.Err.Error() }

// NewConfigError constructs a ConfigError with a captured stack trace.
// Exported so packages outside garnet that perform their own init-time
// validation — spinring's ring-file parser, in particular — can raise
// the same stack-captured error type this package's own init-time
// checks use, rather than a plain fmt.Errorf.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Err: goerrors.Errorf(format, args...)}
}

// panicConfig raises a ConfigError. Callers use this only from init-time
// construction paths (spin ring validation, topology wiring) — never
// from per-cycle simulation code.
func panicConfig(format string, args ...interface{}) {
	panic(NewConfigError(format, args...))
}

// InvariantViolation reports a broken invariant of the router model: a
// VC overflow, a credit underflow, a mismatched SPIN stage-A/stage-B
// flit count, the SPIN lock held by two routers simultaneously, or an
// hops-accounting sentinel found set when it should be -1. These are
// bugs in the simulated hardware model, not runtime conditions a caller
// can recover from, so they carry a captured stack trace for the
// simulation author to read off, and the caller is expected to abort.
type InvariantViolation struct {
	Err *goerrors.Error
}

func (e *InvariantViolation) Error() string { return e.Err.Error() }

func newInvariantViolation(format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{Err: goerrors.Errorf(format, args...)}
}

// panicInvariant raises an InvariantViolation. The core never attempts
// to recover from one: simulating hardware must be deterministic, and
// a violated invariant means the model itself is wrong.
func panicInvariant(format string, args ...interface{}) {
	panic(newInvariantViolation(format, args...))
}

// SaturationExit is not an error. It wraps the reason for a graceful
// exit: the network has met a termination condition (all marked flits
// received), or a watchdog has fired (average marked-flit latency
// exceeded threshold, or the hard cycle quota was reached). The core
// itself signals these exits by passing the plain reason string (one of
// the constants below) to Scheduler.ExitSim; it does not construct a
// SaturationExit.
type SaturationExit struct {
	Reason string
}

func (s *SaturationExit) String() string { return s.Reason }

// Exit reason strings surfaced to the enclosing simulator, verbatim
// from spec.md §6.
const (
	ExitMarkedReceived   = "All marked packet received."
	ExitLatencyThreshold = "avg flit latency exceeded threshold!."
	ExitCycleQuota       = "Simulation exceed its cycle quota!"
)
