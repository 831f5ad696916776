// Package simclock is a minimal reference Scheduler (garnet.Scheduler)
// for this module's own tests and its example cmd. Production hosts are
// expected to supply their own discrete-event kernel (spec.md §1); this
// one exists only so the core can be exercised without one.
package simclock

import "github.com/nocsim/garnet"

// Clock is a single-threaded, cycle-ordered event queue. Events
// scheduled for the same cycle run in the order they were enqueued,
// which — because GarnetNetwork always registers and wakes routers in
// ascending id order — satisfies spec.md §5's "routers in id order for
// tie-breaks" requirement without the scheduler needing to know what a
// router is.
type Clock struct {
	cycle garnet.Cycle
	queue map[garnet.Cycle][]garnet.Consumer

	exited bool
	reason string
}

// New returns a Clock starting at cycle 0.
func New() *Clock {
	return &Clock{queue: make(map[garnet.Cycle][]garnet.Consumer)}
}

func (c *Clock) CurrentCycle() garnet.Cycle { return c.cycle }

func (c *Clock) ScheduleEvent(consumer garnet.Consumer, delta garnet.Cycle) {
	if delta < 1 {
		delta = 1
	}
	target := c.cycle + delta
	c.queue[target] = append(c.queue[target], consumer)
}

func (c *Clock) ExitSim(reason string) {
	c.exited = true
	c.reason = reason
}

// Exited reports whether ExitSim has been called, and with what reason.
func (c *Clock) Exited() (bool, string) { return c.exited, c.reason }

// Run advances the clock one cycle at a time, dispatching every
// Consumer scheduled for that cycle, until ExitSim is called or
// maxCycles is reached. It returns the exit reason, or "" if the cycle
// budget ran out first.
func (c *Clock) Run(maxCycles garnet.Cycle) string {
	for ; c.cycle <= maxCycles; c.cycle++ {
		due := c.queue[c.cycle]
		if due == nil {
			continue
		}
		delete(c.queue, c.cycle)
		for _, consumer := range due {
			consumer.Wakeup(c.cycle)
			if c.exited {
				return c.reason
			}
		}
	}
	return c.reason
}
