package cardrive

import (
	"time"

	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/doorstate"
	"github.com/liftctl/liftctl/internal/floor"
)

// MoveCar drives the car floor-by-floor from its current floor to its
// destination floor, one Delay per floor, reporting "Between" while in
// transit. If the destination lies outside the car's serviceable range,
// it is reset to the current floor instead of attempting the move — a
// defensive clamp against a controller that somehow dispatched an
// out-of-range floor.
func (c *Car) MoveCar() {
	snap := c.Store.Snapshot()
	if !floor.Within(snap.DestinationFloor, c.LowestFloor, c.HighestFloor) {
		c.Store.Mutate(func(s *carstate.Snapshot) { s.DestinationFloor = s.CurrentFloor })
		return
	}

	dir := floor.Up
	if !floor.Le(snap.CurrentFloor, snap.DestinationFloor) {
		dir = floor.Down
	}

	for {
		snap = c.Store.Snapshot()
		if snap.CurrentFloor == snap.DestinationFloor {
			break
		}
		c.setStatus(doorstate.StatusBetween)
		time.Sleep(c.Delay)
		c.Store.Mutate(func(s *carstate.Snapshot) {
			s.CurrentFloor = floor.Step(s.CurrentFloor, dir)
		})
		if c.Metrics != nil {
			c.Metrics.FloorTravelled()
		}
	}

	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.OpenButton = false
		s.CloseButton = false
	})
	c.setStatus(doorstate.StatusClosed)
}
