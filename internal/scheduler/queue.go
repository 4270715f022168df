package scheduler

import "github.com/liftctl/liftctl/internal/floor"

// Node is one entry in a car's ride queue: a floor the car must visit,
// travelling in the given direction when it gets there.
type Node struct {
	Floor     string
	Direction floor.Direction
	Next      *Node
}

// size returns the number of nodes reachable from head.
func size(head *Node) int {
	n := 0
	for cur := head; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// addAfter inserts floor+direction immediately after "after", unless the
// very next node already holds the same floor and direction (duplicate
// suppression mirrors the original controller's queue_add).
func addAfter(after *Node, fl string, dir floor.Direction) {
	if after.Next != nil && after.Next.Floor == fl && after.Next.Direction == dir {
		return
	}
	after.Next = &Node{Floor: fl, Direction: dir, Next: after.Next}
}

// pushFront prepends a node holding floor+direction.
func pushFront(head **Node, fl string, dir floor.Direction) {
	*head = &Node{Floor: fl, Direction: dir, Next: *head}
}

// popFront removes the first node, if any.
func popFront(head **Node) {
	if *head == nil {
		return
	}
	*head = (*head).Next
}

// popFrontIfFloor removes the first node only if its floor matches fl.
func popFrontIfFloor(head **Node, fl string) {
	if *head == nil {
		return
	}
	if (*head).Floor == fl {
		popFront(head)
	}
}

// popFrontPairIfFloor removes up to two leading nodes whose floor matches
// fl, stopping as soon as a node's floor doesn't match. Two nodes can
// legitimately share a floor (one for each travel direction), which is
// why arrival at a floor can require popping both.
func popFrontPairIfFloor(head **Node, fl string) {
	popFrontIfFloor(head, fl)
	popFrontIfFloor(head, fl)
}

// PopArrival removes the queue entries satisfied by a car's arrival at
// fl (the caller holds c.Mu). Callers must pass the exact floor the car
// just arrived at.
func PopArrival(c *Car, fl string) {
	popFrontPairIfFloor(&c.Queue, fl)
}
