package scheduler

import (
	"testing"

	"github.com/liftctl/liftctl/internal/floor"
)

func TestAddAfterSuppressesImmediateDuplicate(t *testing.T) {
	head := &Node{Floor: "1", Direction: floor.Up}
	addAfter(head, "5", floor.Up)
	addAfter(head, "5", floor.Up) // duplicate, should not be added again
	if size(head) != 2 {
		t.Fatalf("size = %d, want 2 (duplicate suppressed)", size(head))
	}
}

func TestAddAfterAllowsDistinctDirectionSameFloor(t *testing.T) {
	head := &Node{Floor: "1", Direction: floor.Up}
	addAfter(head, "5", floor.Up)
	addAfter(head, "5", floor.Down) // same floor, different direction: allowed
	if size(head) != 3 {
		t.Fatalf("size = %d, want 3", size(head))
	}
}

func TestPopFrontPairIfFloorStopsAtMismatch(t *testing.T) {
	head := &Node{Floor: "5", Direction: floor.Up, Next: &Node{Floor: "7", Direction: floor.Up}}
	popFrontPairIfFloor(&head, "5")
	if head == nil || head.Floor != "7" {
		t.Fatalf("expected only the first node popped, head = %+v", head)
	}
}

func TestPopFrontPairIfFloorPopsBothWhenBothMatch(t *testing.T) {
	head := &Node{Floor: "5", Direction: floor.Up, Next: &Node{Floor: "5", Direction: floor.Down, Next: &Node{Floor: "9", Direction: floor.Down}}}
	popFrontPairIfFloor(&head, "5")
	if head == nil || head.Floor != "9" {
		t.Fatalf("expected both matching nodes popped, head = %+v", head)
	}
}
