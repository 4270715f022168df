package safetycheck

import "testing"

func TestCheckIsIdempotentOnceClean(t *testing.T) {
	s := State{CurrentFloor: "1", DestinationFloor: "5", Status: "Between"}
	next, _, changed := Check(s)
	if changed {
		t.Fatalf("expected no change on a clean state, got %+v", next)
	}
	next2, msgs2, changed2 := Check(next)
	if changed2 || len(msgs2) != 0 {
		t.Fatalf("second Check on clean output should be a no-op, got changed=%v msgs=%v", changed2, msgs2)
	}
	if next2 != next {
		t.Fatalf("second Check mutated state: %+v != %+v", next2, next)
	}
}

func TestCheckEscalatesEmergencyStopOnce(t *testing.T) {
	s := State{CurrentFloor: "1", DestinationFloor: "1", Status: "Closed", EmergencyStop: true}
	next, msgs, changed := Check(s)
	if !changed || !next.EmergencyMode {
		t.Fatalf("expected emergency mode to be set")
	}
	if len(msgs) != 1 || msgs[0] != "The emergency stop button has been pressed!" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
	// Check again: emergency_mode is now set, so no repeat escalation.
	next2, msgs2, changed2 := Check(next)
	if changed2 || len(msgs2) != 0 {
		t.Fatalf("expected idempotent re-check, got changed=%v msgs=%v next=%+v", changed2, msgs2, next2)
	}
}

func TestCheckReopensOnObstructionWhileClosing(t *testing.T) {
	s := State{CurrentFloor: "1", DestinationFloor: "1", Status: "Closing", DoorObstruction: true}
	next, _, changed := Check(s)
	if !changed || next.Status != "Opening" {
		t.Fatalf("expected status corrected to Opening, got %+v", next)
	}
}

func TestCheckFlagsDataConsistencyError(t *testing.T) {
	s := State{CurrentFloor: "not-a-floor", DestinationFloor: "1", Status: "Closed"}
	next, msgs, changed := Check(s)
	if !changed || !next.EmergencyMode {
		t.Fatalf("expected emergency mode on invalid floor")
	}
	if len(msgs) != 1 || msgs[0] != "Data consistency error!" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}
