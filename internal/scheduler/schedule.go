package scheduler

import "github.com/liftctl/liftctl/internal/floor"

// addVirtualNode prepends a node representing the car's effective current
// position to its queue, so the insertion algorithm in ScheduleFloors can
// treat "where the car already is" as block zero of the queue. It returns
// true if a node was actually pushed (the caller must pop it back off once
// insertion is done).
//
// dir is only a fallback: it is used verbatim solely when the queue is
// currently empty. Whenever the queue is non-empty, the direction is
// always recomputed from the car's current floor or its first queued
// entry, and the dir argument is discarded — this mirrors the original
// insertion algorithm exactly, including that quirk.
func addVirtualNode(c *Car, dir floor.Direction) bool {
	if c.Status == "Between" {
		if floor.Le(c.CurrentFloor, c.DestinationFloor) {
			dir = floor.Up
		} else {
			dir = floor.Down
		}
		next := floor.Step(c.CurrentFloor, dir)
		if next == c.DestinationFloor {
			return false
		}
		pushFront(&c.Queue, next, dir)
		return true
	}

	if c.Queue != nil {
		if c.CurrentFloor == c.Queue.Floor {
			dir = c.Queue.Direction
		} else if floor.Le(c.CurrentFloor, c.Queue.Floor) {
			dir = floor.Up
		} else {
			dir = floor.Down
		}
	}

	pushFront(&c.Queue, c.CurrentFloor, dir)
	return true
}

// isValidOrder reports whether travelling from sourceFloor to destFloor
// is consistent with dir: always true when the floors are equal, true
// for Up only if sourceFloor precedes destFloor, true for Down only if
// destFloor precedes sourceFloor.
func isValidOrder(sourceFloor, destFloor string, dir floor.Direction) bool {
	if sourceFloor == destFloor {
		return true
	}
	if dir == floor.Up && floor.Le(sourceFloor, destFloor) {
		return true
	}
	if dir == floor.Down && floor.Le(destFloor, sourceFloor) {
		return true
	}
	return false
}

// ScheduleFloors inserts a (sourceFloor, destFloor) ride into the car's
// queue at the position that keeps each directional block of the queue
// monotonic, following the SCAN/LOOK convention: a car already travelling
// up keeps picking up further up-calls on the way, never reversing
// mid-block. Callers must hold c.Mu.
func ScheduleFloors(c *Car, sourceFloor, destFloor string) {
	dir := floor.Up
	if !floor.Le(sourceFloor, destFloor) {
		dir = floor.Down
	}

	virtualAdded := addVirtualNode(c, dir)

	prev := c.Queue
	current := (*Node)(nil)
	if c.Queue != nil {
		current = c.Queue.Next
	}

	// Special case: the ride's source floor matches the virtual head
	// (the car's effective current position) and continues in the same
	// direction, but the car has already begun closing its doors there
	// — too late to board on this stop, so the insertion search starts
	// one block further in.
	if c.Queue != nil && c.Queue.Floor == sourceFloor && c.Queue.Direction == dir && c.Status == "Closing" {
		prev = current
		if current != nil {
			current = current.Next
		}
	}

	var suitablePos *Node
	for current != nil {
		if prev.Direction != current.Direction {
			suitablePos = nil
		}

		if prev.Direction == current.Direction && prev.Direction != dir {
			prev = current
			current = current.Next
			continue
		}

		if (prev.Direction != dir || isValidOrder(prev.Floor, sourceFloor, dir)) &&
			(current.Direction != dir || isValidOrder(sourceFloor, current.Floor, dir)) {
			suitablePos = prev
		}
		if suitablePos != nil &&
			(prev.Direction != dir || isValidOrder(prev.Floor, destFloor, dir)) &&
			(current.Direction != dir || isValidOrder(destFloor, current.Floor, dir)) {
			break
		}

		prev = current
		current = current.Next
	}

	if suitablePos == nil {
		addAfter(prev, sourceFloor, dir)
		addAfter(prev.Next, destFloor, dir)
	} else {
		addAfter(suitablePos, sourceFloor, dir)
		insertAfter := prev
		if suitablePos == prev {
			insertAfter = prev.Next
		}
		addAfter(insertAfter, destFloor, dir)
	}

	if virtualAdded {
		popFront(&c.Queue)
	}
}
