package scheduler

import (
	"net"
	"sync"

	"github.com/liftctl/liftctl/internal/floor"
)

// Car is the controller's view of a registered car: its travel range,
// last-reported status, and pending ride queue. Conn is the car's control
// connection; writes to it (dispatch messages) happen while Mu is held, as
// in the original controller.
type Car struct {
	Name            string
	LowestFloor     string
	HighestFloor    string
	Status          string
	CurrentFloor    string
	DestinationFloor string
	Conn            net.Conn
	Queue           *Node

	Mu sync.Mutex
}

// QueueLen returns the number of pending stops, used by car selection and
// by the queue-length metric.
func (c *Car) QueueLen() int {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return size(c.Queue)
}

// InBounds reports whether fl lies within the car's serviceable range.
func (c *Car) InBounds(fl string) bool {
	return floor.Within(fl, c.LowestFloor, c.HighestFloor)
}
