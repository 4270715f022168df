package cardrive

import (
	"context"

	"github.com/liftctl/liftctl/internal/carstate"
)

// ManageCar is the car's main control loop: on every shared-state wakeup
// (or once per Delay if nothing changes), it services the open/close
// button presses, reacts to individual service and emergency mode
// transitions by tearing down or re-establishing the controller session,
// and otherwise drives the car towards its destination floor whenever the
// doors are closed. It returns when ctx is cancelled.
func (c *Car) ManageCar(ctx context.Context) {
	c.StartSession(ctx)

	lastIndividualService := false
	lastEmergency := false

	for ctx.Err() == nil {
		c.Store.WaitChanged(c.Delay)
		if ctx.Err() != nil {
			return
		}

		snap := c.Store.Snapshot()

		if snap.OpenButton {
			c.Store.Mutate(func(s *carstate.Snapshot) { s.OpenButton = false })
			c.OpenDoors()
		}
		snap = c.Store.Snapshot()
		if snap.CloseButton {
			c.Store.Mutate(func(s *carstate.Snapshot) { s.CloseButton = false })
			c.CloseDoors()
		}
		snap = c.Store.Snapshot()

		if !snap.IndividualServiceMode && lastIndividualService {
			c.shouldConnect.Store(true)
			c.StartSession(ctx)
		}
		if !snap.EmergencyMode && lastEmergency {
			c.shouldConnect.Store(true)
			c.StartSession(ctx)
		}
		if snap.EmergencyMode {
			c.shouldConnect.Store(false)
		}

		if snap.IndividualServiceMode {
			if !lastIndividualService {
				c.shouldConnect.Store(false)
			}
			if snap.CurrentFloor != snap.DestinationFloor {
				c.MoveCar()
			}
		}

		if !snap.IndividualServiceMode && !snap.EmergencyMode {
			if snap.CurrentFloor != snap.DestinationFloor && snap.Status == "Closed" {
				c.MoveCar()
				c.OpenDoors()
			}
		}

		lastIndividualService = snap.IndividualServiceMode
		lastEmergency = snap.EmergencyMode
	}
}
