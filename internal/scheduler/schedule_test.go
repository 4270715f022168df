package scheduler

import (
	"testing"

	"github.com/liftctl/liftctl/internal/floor"
)

func newIdleCar(current string) *Car {
	return &Car{
		Name:             "A",
		LowestFloor:      "B2",
		HighestFloor:     "20",
		Status:           "Closed",
		CurrentFloor:     current,
		DestinationFloor: current,
	}
}

func floors(head *Node) []string {
	var out []string
	for cur := head; cur != nil; cur = cur.Next {
		out = append(out, cur.Floor)
	}
	return out
}

func TestScheduleFloorsSingleRideFromIdle(t *testing.T) {
	c := newIdleCar("1")
	c.Mu.Lock()
	ScheduleFloors(c, "1", "5")
	c.Mu.Unlock()

	got := floors(c.Queue)
	want := []string{"1", "5"}
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestScheduleFloorsKeepsBlockMonotonic verifies that a second up-call
// picked up while the car is already travelling up is inserted within the
// up-travelling block rather than appended after a later down block.
func TestScheduleFloorsKeepsBlockMonotonic(t *testing.T) {
	c := newIdleCar("1")
	c.Mu.Lock()
	ScheduleFloors(c, "1", "10") // up block: 1 -> 10
	ScheduleFloors(c, "15", "2") // down call, goes after the up block
	ScheduleFloors(c, "5", "8")  // up call along the way, should land inside the up block
	c.Mu.Unlock()

	got := floors(c.Queue)
	// Expect the up block (1,10) to remain contiguous with 5,8 inserted
	// before reaching 10, and the down block (15,2) to follow.
	idx10 := indexOf(got, "10")
	idx5 := indexOf(got, "5")
	idx8 := indexOf(got, "8")
	idx15 := indexOf(got, "15")
	if !(idx5 < idx10 && idx8 < idx10) {
		t.Fatalf("expected 5 and 8 inserted before 10 within the up block, got %v", got)
	}
	if idx15 < idx10 {
		t.Fatalf("expected down call after the up block completes, got %v", got)
	}
}

func TestScheduleFloorsLateClosingKeepsRideOffTheHead(t *testing.T) {
	c := newIdleCar("1")
	c.Status = "Closing"
	c.Queue = &Node{Floor: "1", Direction: floor.Up, Next: &Node{Floor: "10", Direction: floor.Up}}

	c.Mu.Lock()
	ScheduleFloors(c, "1", "3")
	c.Mu.Unlock()

	got := floors(c.Queue)
	if got[0] != "10" && indexOf(got, "3") == 0 {
		t.Fatalf("expected the too-late ride not to be inserted at the head while doors are closing, got %v", got)
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
