package cardrive

import (
	"testing"
	"time"

	"github.com/liftctl/liftctl/internal/carstate"
)

func TestMoveCarClampsOutOfBoundsDestination(t *testing.T) {
	c := newTestCar()
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.CurrentFloor = "5"
		s.DestinationFloor = "999"
	})
	c.MoveCar()
	snap := c.Store.Snapshot()
	if snap.DestinationFloor != "5" {
		t.Fatalf("expected destination clamped back to current floor, got %+v", snap)
	}
}

func TestMoveCarReachesDestinationFloorByFloor(t *testing.T) {
	c := newTestCar()
	c.Delay = time.Millisecond
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.CurrentFloor = "1"
		s.DestinationFloor = "3"
	})
	c.MoveCar()
	snap := c.Store.Snapshot()
	if snap.CurrentFloor != "3" || snap.Status != "Closed" {
		t.Fatalf("unexpected end state: %+v", snap)
	}
}
