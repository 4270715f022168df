package cardrive

import (
	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/floor"
	"github.com/liftctl/liftctl/internal/wireerr"
)

// Open presses the open-doors button.
func (c *Car) Open() error {
	c.Store.Mutate(func(s *carstate.Snapshot) { s.OpenButton = true })
	return nil
}

// Close presses the close-doors button.
func (c *Car) Close() error {
	c.Store.Mutate(func(s *carstate.Snapshot) { s.CloseButton = true })
	return nil
}

// Stop presses the emergency stop button.
func (c *Car) Stop() error {
	c.Store.Mutate(func(s *carstate.Snapshot) { s.EmergencyStop = true })
	return nil
}

// ServiceOn enters individual service mode, clearing any emergency mode
// in the process.
func (c *Car) ServiceOn() error {
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.IndividualServiceMode = true
		s.EmergencyMode = false
	})
	return nil
}

// ServiceOff leaves individual service mode.
func (c *Car) ServiceOff() error {
	c.Store.Mutate(func(s *carstate.Snapshot) { s.IndividualServiceMode = false })
	return nil
}

// Up sets the destination floor one floor above current, only while in
// individual service mode with the doors fully closed.
func (c *Car) Up() error {
	return c.stepService(floor.Up)
}

// Down sets the destination floor one floor below current, only while in
// individual service mode with the doors fully closed.
func (c *Car) Down() error {
	return c.stepService(floor.Down)
}

func (c *Car) stepService(dir floor.Direction) error {
	snap := c.Store.Snapshot()
	if !snap.IndividualServiceMode {
		return wireerr.WithMessage(wireerr.ErrModeForbidden, "Operation only allowed in service mode.")
	}
	if snap.Status == "Between" {
		return wireerr.WithMessage(wireerr.ErrModeForbidden, "Operation not allowed while elevator is moving.")
	}
	if snap.Status != "Closed" {
		return wireerr.WithMessage(wireerr.ErrModeForbidden, "Operation not allowed while doors are open.")
	}
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.DestinationFloor = floor.Step(s.CurrentFloor, dir)
	})
	return nil
}
