package cardrive

import (
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/doorstate"
)

// waitForDelay blocks for up to delay, but returns early whenever the
// store changes, invoking onSignal with the latest snapshot each time.
// If onSignal reports it has taken over (stop=true — e.g. it redirected
// into the opposite door action) waitForDelay returns immediately.
// Otherwise it keeps waiting out the remainder of delay. This mirrors a
// `while (pthread_cond_timedwait(...) != ETIMEDOUT) { ... }` loop: keep
// reacting to wakeups until the deadline elapses with nothing further to
// react to.
func waitForDelay(store *carstate.Store, delay time.Duration, onSignal func(carstate.Snapshot) (stop bool)) {
	deadline := time.Now().Add(delay)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		snap, changed := store.WaitChanged(remaining)
		if !changed {
			return
		}
		if onSignal(snap) {
			return
		}
	}
}

// OpenDoors drives the door state machine from its current status to
// fully open, holds them open for Delay (unless in individual service or
// emergency mode, where the doors stay open until commanded otherwise),
// then closes them again — unless interrupted by the close button, which
// redirects straight into CloseDoors.
func (c *Car) OpenDoors() {
	for currentStatus(c.Store) != doorstate.StatusOpen {
		snap := c.Store.Snapshot()
		status, _ := doorstate.Parse(snap.Status)
		if status == doorstate.StatusClosed || status == doorstate.StatusClosing {
			c.setStatus(doorstate.StatusOpening)
			redirected := false
			waitForDelay(c.Store, c.Delay, func(latest carstate.Snapshot) bool {
				if latest.CloseButton {
					c.CloseDoors()
					redirected = true
					return true
				}
				return false
			})
			if redirected {
				return
			}
		}
		if currentStatus(c.Store) == doorstate.StatusOpening {
			c.setStatus(doorstate.StatusOpen)
		}
	}

	snap := c.Store.Snapshot()
	if !snap.IndividualServiceMode && !snap.EmergencyMode {
		redirected := false
		waitForDelay(c.Store, c.Delay, func(latest carstate.Snapshot) bool {
			if latest.CloseButton {
				c.CloseDoors()
				redirected = true
				return true
			}
			return false
		})
		if redirected {
			return
		}
	}

	snap = c.Store.Snapshot()
	if !snap.IndividualServiceMode && !snap.EmergencyMode && currentStatus(c.Store) == doorstate.StatusOpen {
		c.CloseDoors()
	}
}

// CloseDoors drives the door state machine from its current status to
// fully closed, unless interrupted by the open button, which redirects
// straight into OpenDoors.
func (c *Car) CloseDoors() {
	for currentStatus(c.Store) != doorstate.StatusClosed {
		status := currentStatus(c.Store)
		if status == doorstate.StatusOpen || status == doorstate.StatusOpening {
			c.setStatus(doorstate.StatusClosing)
			redirected := false
			waitForDelay(c.Store, c.Delay, func(latest carstate.Snapshot) bool {
				if latest.OpenButton {
					c.OpenDoors()
					redirected = true
					return true
				}
				return false
			})
			if redirected {
				return
			}
		}
		if currentStatus(c.Store) == doorstate.StatusClosing {
			c.setStatus(doorstate.StatusClosed)
		}
	}
	if c.Metrics != nil {
		c.Metrics.DoorCycle()
	}
}

// currentStatus reads the store's status string as a doorstate.Status.
func currentStatus(store *carstate.Store) doorstate.Status {
	status, _ := doorstate.Parse(store.Snapshot().Status)
	return status
}

// transientStatusWarnThreshold is how long a transient status (Opening,
// Closing, Between) may be held before setStatus logs a warning — a car
// stuck mid-cycle this long likely means the safety monitor's next
// invariant check is overdue, not that the delay configuration is just
// long.
const transientStatusWarnThreshold = 30 * time.Second

// setStatus commits a new doorstate.Status to the store and records the
// transition in the car's Tracker, logging if the prior status was held
// unusually long.
func (c *Car) setStatus(status doorstate.Status) {
	prior := c.tracker.Current()
	spent := c.tracker.Transition(status)
	if !prior.IsTerminal() && spent > transientStatusWarnThreshold && c.Log != nil {
		c.Log.Warn("car held a transient door status unusually long",
			zap.String("status", prior.String()),
			zap.Duration("held_for", spent))
	}
	c.Store.Mutate(func(s *carstate.Snapshot) { s.Status = status.String() })
}
