package cardrive

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/wire"
)

// StartSession spawns a goroutine that repeatedly attempts to connect to
// the controller, for as long as shouldConnect stays true and ctx is not
// cancelled. Each successful connection runs a sender and a receiver
// concurrently; when either one ends (or the connection drops) the other
// is stopped and, if still allowed to, the car redials. This is called
// once at startup and again any time the car leaves individual service
// or emergency mode, mirroring the original's repeated controller_init
// calls.
func (c *Car) StartSession(ctx context.Context) {
	go c.runSession(ctx)
}

func (c *Car) runSession(ctx context.Context) {
	for c.shouldConnect.Load() && ctx.Err() == nil {
		conn, err := net.DialTimeout("tcp", c.ControllerAddr, c.Delay)
		if err != nil {
			if c.Metrics != nil {
				c.Metrics.Reconnect()
			}
			select {
			case <-time.After(c.Delay):
			case <-ctx.Done():
				return
			}
			continue
		}

		if !c.shouldConnect.Load() || ctx.Err() != nil {
			conn.Close()
			return
		}

		connCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			c.sendLoop(connCtx, conn)
			cancel() // the sender ending (disconnect, shutdown) stops the receiver too
		}()
		go func() {
			defer wg.Done()
			c.receiveLoop(connCtx, conn)
			cancel() // the receiver ending (connection dropped) stops the sender too
		}()

		wg.Wait()
		conn.Close()
		cancel()

		if !c.shouldConnect.Load() || ctx.Err() != nil {
			return
		}
	}
}

// sendLoop sends the initial registration message, then a STATUS update
// every time the car's reported status/current/destination floor
// changes, waiting up to Delay between checks. On exit (should_connect
// cleared, emergency, or shutdown) it sends a final INDIVIDUAL SERVICE or
// EMERGENCY notice if applicable.
func (c *Car) sendLoop(ctx context.Context, conn net.Conn) {
	initial := fmt.Sprintf("CAR %s %s %s", c.Name, c.LowestFloor, c.HighestFloor)
	if err := wire.Send(conn, initial); err != nil {
		c.Log.Warn("cardrive: failed to register with controller", zap.Error(err))
		return
	}

	var lastStatus, lastCurrent, lastDest string

	for c.shouldConnect.Load() && ctx.Err() == nil {
		snap, _ := c.Store.WaitChanged(c.Delay)

		if !c.shouldConnect.Load() || ctx.Err() != nil {
			break
		}

		if snap.Status == lastStatus && snap.CurrentFloor == lastCurrent && snap.DestinationFloor == lastDest {
			continue
		}
		lastStatus, lastCurrent, lastDest = snap.Status, snap.CurrentFloor, snap.DestinationFloor

		msg := fmt.Sprintf("STATUS %s %s %s", snap.Status, snap.CurrentFloor, snap.DestinationFloor)
		if err := wire.Send(conn, msg); err != nil {
			c.Log.Warn("cardrive: failed to send status", zap.Error(err))
			return
		}
	}

	snap := c.Store.Snapshot()
	switch {
	case snap.IndividualServiceMode:
		_ = wire.Send(conn, "INDIVIDUAL SERVICE")
	case snap.EmergencyMode:
		_ = wire.Send(conn, "EMERGENCY")
	}
}

// receiveLoop reads FLOOR dispatch messages from the controller and
// applies them to the shared state: if the dispatched floor is where the
// car already sits, it presses the open button; otherwise it sets the
// new destination floor.
func (c *Car) receiveLoop(ctx context.Context, conn net.Conn) {
	type result struct {
		msg string
		err error
	}
	msgs := make(chan result, 1)

	for ctx.Err() == nil {
		go func() {
			m, err := wire.Receive(conn)
			msgs <- result{m, err}
		}()

		select {
		case <-ctx.Done():
			return
		case r := <-msgs:
			if r.err != nil {
				return
			}
			tokens := wire.Tokenize(r.msg)
			if len(tokens) < 2 || tokens[0] != "FLOOR" {
				continue
			}
			dest := tokens[1]
			c.Store.Mutate(func(s *carstate.Snapshot) {
				if s.CurrentFloor == dest {
					s.OpenButton = true
				} else {
					s.DestinationFloor = dest
				}
			})
		}
	}
}
