// Package cardrive implements a car's control loop: the door and motion
// state machine, and its controller session (connect, status reporting,
// floor dispatch ingestion). It is the long-running heart of the car
// binary.
package cardrive

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/doorstate"
)

// Car bundles everything the control loop and controller session need:
// its static configuration and the shared state Store other processes
// also read.
type Car struct {
	Name           string
	LowestFloor    string
	HighestFloor   string
	Delay          time.Duration
	ControllerAddr string

	Store *carstate.Store
	Log   *zap.Logger

	Metrics Metrics

	shouldConnect atomic.Bool
	tracker       *doorstate.Tracker
}

// Metrics is the subset of observability hooks the control loop and
// session report to; a nil Metrics is simply skipped, so tests can leave
// it unset.
type Metrics interface {
	DoorCycle()
	Reconnect()
	FloorTravelled()
}

// NewCar builds a Car ready to run, with should_connect initially true —
// matching the original's car_data initialization.
func NewCar(name, lowestFloor, highestFloor string, delay time.Duration, controllerAddr string, log *zap.Logger) *Car {
	c := &Car{
		Name:           name,
		LowestFloor:    lowestFloor,
		HighestFloor:   highestFloor,
		Delay:          delay,
		ControllerAddr: controllerAddr,
		Store:          carstate.New(lowestFloor),
		Log:            log,
		tracker:        doorstate.NewTracker(),
	}
	c.shouldConnect.Store(true)
	return c
}
