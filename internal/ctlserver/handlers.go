package ctlserver

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/floor"
	"github.com/liftctl/liftctl/internal/ledger"
	"github.com/liftctl/liftctl/internal/scheduler"
	"github.com/liftctl/liftctl/internal/wire"
	"github.com/liftctl/liftctl/internal/wireerr"
)

// handleCall answers a call-pad request: find the least busy car able to
// serve both floors, insert the ride into its queue, and reply with
// either "CAR {name}" or "UNAVAILABLE" — sent exactly once, regardless of
// whether no car was chosen because none is registered or because none
// qualifies.
func (s *Server) handleCall(conn net.Conn, sourceFloor, destFloor string) {
	car := scheduler.ChooseCar(s.Registry, sourceFloor, destFloor)
	if car == nil {
		if s.Log != nil {
			s.Log.Debug("call unanswerable", zap.String("source", sourceFloor), zap.String("dest", destFloor), zap.Error(wireerr.ErrNoCarAvailable))
		}
		if s.Metrics != nil {
			s.Metrics.CallUnavailable()
		}
		if s.Ledger != nil {
			s.Ledger.Record(ledger.EventCallUnavailable, "", sourceFloor, destFloor)
		}
		_ = wire.Send(conn, "UNAVAILABLE")
		return
	}

	car.Mu.Lock()
	scheduler.ScheduleFloors(car, sourceFloor, destFloor)
	if car.DestinationFloor != car.Queue.Floor || car.CurrentFloor == car.Queue.Floor {
		dispatchFloor := car.Queue.Floor
		_ = wire.Send(car.Conn, fmt.Sprintf("FLOOR %s", dispatchFloor))
		if s.Metrics != nil {
			s.Metrics.FloorDispatched(car.Name)
		}
		if s.Ledger != nil {
			s.Ledger.Record(ledger.EventFloorDispatched, car.Name, dispatchFloor, "")
		}
	}
	car.Mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.CallReceived()
		s.Metrics.SetQueueLength(car.Name, car.QueueLen())
	}
	if s.Ledger != nil {
		s.Ledger.Record(ledger.EventCallReceived, car.Name, sourceFloor, destFloor)
	}

	_ = wire.Send(conn, fmt.Sprintf("CAR %s", car.Name))
}

// manageCar registers a newly connected car and then services its STATUS
// reports until it disconnects or announces INDIVIDUAL SERVICE /
// EMERGENCY, at which point it is removed from the registry.
func (s *Server) manageCar(ctx context.Context, conn net.Conn, name, lowestFloor, highestFloor string) {
	defer conn.Close()

	if !validFloorPair(lowestFloor, highestFloor) {
		if s.Log != nil {
			s.Log.Debug("car registration rejected", zap.String("name", name), zap.Error(wireerr.ErrBadArgument))
		}
		_ = wire.Send(conn, "INVALID")
		return
	}

	car := &scheduler.Car{
		Name:         name,
		LowestFloor:  lowestFloor,
		HighestFloor: highestFloor,
		Status:       "Closed",
		CurrentFloor: lowestFloor,
		DestinationFloor: lowestFloor,
		Conn:         conn,
	}
	s.Registry.Add(car)
	if s.Metrics != nil {
		s.Metrics.CarRegistered()
	}
	if s.Ledger != nil {
		s.Ledger.Record(ledger.EventCarRegistered, car.Name, "", "")
	}
	defer func() {
		s.Registry.Remove(name)
		if s.Metrics != nil {
			s.Metrics.CarRemoved()
		}
		if s.Ledger != nil {
			s.Ledger.Record(ledger.EventCarRemoved, car.Name, "", "")
		}
	}()

	for {
		msg, err := wire.Receive(conn)
		if err != nil {
			return
		}
		if msg == "INDIVIDUAL SERVICE" || msg == "EMERGENCY" {
			return
		}

		tokens := wire.Tokenize(msg)
		if len(tokens) == 4 && tokens[0] == "STATUS" {
			s.updateCarState(car, tokens[1], tokens[2], tokens[3])
		}
	}
}

// updateCarState records a car's latest reported status/position and, if
// it has just arrived (Opening, at its destination floor), pops the
// completed stop(s) off its queue and dispatches the next one.
func (s *Server) updateCarState(car *scheduler.Car, status, currentFloor, destinationFloor string) {
	if s.Metrics != nil {
		s.Metrics.StatusUpdate(car.Name)
	}

	car.Mu.Lock()
	car.Status = status
	car.CurrentFloor = currentFloor
	car.DestinationFloor = destinationFloor

	if status != "Opening" || currentFloor != destinationFloor {
		car.Mu.Unlock()
		return
	}

	scheduler.PopArrival(car, currentFloor)
	if car.Queue != nil {
		dispatchFloor := car.Queue.Floor
		_ = wire.Send(car.Conn, fmt.Sprintf("FLOOR %s", dispatchFloor))
		if s.Metrics != nil {
			s.Metrics.FloorDispatched(car.Name)
		}
		if s.Ledger != nil {
			s.Ledger.Record(ledger.EventFloorDispatched, car.Name, dispatchFloor, "")
		}
	}
	car.Mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.SetQueueLength(car.Name, car.QueueLen())
	}
	if s.Ledger != nil {
		s.Ledger.Record(ledger.EventFloorArrival, car.Name, currentFloor, "")
	}
}

func validFloorPair(lowestFloor, highestFloor string) bool {
	return floor.Valid(lowestFloor) && floor.Valid(highestFloor) && floor.Le(lowestFloor, highestFloor)
}
