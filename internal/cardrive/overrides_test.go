package cardrive

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
)

func newTestCar() *Car {
	return NewCar("A", "1", "10", 10*time.Millisecond, "127.0.0.1:0", zap.NewNop())
}

func TestUpRejectedOutsideServiceMode(t *testing.T) {
	c := newTestCar()
	if err := c.Up(); err == nil || err.Error() != "Operation only allowed in service mode." {
		t.Fatalf("Up() = %v, want service-mode error", err)
	}
}

func TestUpRejectedWhileMoving(t *testing.T) {
	c := newTestCar()
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.IndividualServiceMode = true
		s.Status = "Between"
	})
	if err := c.Up(); err == nil || err.Error() != "Operation not allowed while elevator is moving." {
		t.Fatalf("Up() = %v, want moving error", err)
	}
}

func TestUpRejectedWhileDoorsOpen(t *testing.T) {
	c := newTestCar()
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.IndividualServiceMode = true
		s.Status = "Open"
	})
	if err := c.Up(); err == nil || err.Error() != "Operation not allowed while doors are open." {
		t.Fatalf("Up() = %v, want doors-open error", err)
	}
}

func TestUpSucceedsWhenServiceModeAndClosed(t *testing.T) {
	c := newTestCar()
	c.Store.Mutate(func(s *carstate.Snapshot) {
		s.IndividualServiceMode = true
		s.Status = "Closed"
		s.CurrentFloor = "1"
	})
	if err := c.Up(); err != nil {
		t.Fatalf("Up() = %v, want nil", err)
	}
	if got := c.Store.Snapshot().DestinationFloor; got != "2" {
		t.Fatalf("DestinationFloor = %q, want 2", got)
	}
}

func TestServiceOnClearsEmergencyMode(t *testing.T) {
	c := newTestCar()
	c.Store.Mutate(func(s *carstate.Snapshot) { s.EmergencyMode = true })
	if err := c.ServiceOn(); err != nil {
		t.Fatalf("ServiceOn() = %v", err)
	}
	snap := c.Store.Snapshot()
	if !snap.IndividualServiceMode || snap.EmergencyMode {
		t.Fatalf("unexpected snapshot after ServiceOn: %+v", snap)
	}
}
