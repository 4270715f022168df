// Package safetycheck implements the invariant checks the safety monitor
// runs against a car's shared state after every wakeup.
package safetycheck

import "github.com/liftctl/liftctl/internal/floor"

// State is the subset of a car's shared state the safety checks read and
// may correct.
type State struct {
	CurrentFloor         string
	DestinationFloor     string
	Status               string
	OpenButton           bool
	CloseButton          bool
	DoorObstruction      bool
	Overload             bool
	EmergencyStop        bool
	IndividualServiceMode bool
	EmergencyMode        bool
}

func validStatus(s string) bool {
	switch s {
	case "Open", "Opening", "Closed", "Closing", "Between":
		return true
	}
	return false
}

func validDoorObstruction(s State) bool {
	return !s.DoorObstruction || s.Status == "Opening" || s.Status == "Closing"
}

// Check inspects state and returns the corrected state plus any
// human-readable messages produced along the way (mirroring the original
// monitor's stdout announcements), and whether a correction was made.
// Calling Check twice in succession on its own output is a no-op: once a
// state is clean, Check reports no further change.
func Check(s State) (next State, messages []string, changed bool) {
	next = s

	if next.DoorObstruction && next.Status == "Closing" {
		next.Status = "Opening"
		changed = true
	}

	if next.EmergencyStop && !next.EmergencyMode {
		messages = append(messages, "The emergency stop button has been pressed!")
		next.EmergencyMode = true
		changed = true
	}

	if next.Overload && !next.EmergencyMode {
		messages = append(messages, "The overload sensor has been tripped!")
		next.EmergencyMode = true
		changed = true
	}

	if !next.EmergencyMode && !consistent(next) {
		messages = append(messages, "Data consistency error!")
		next.EmergencyMode = true
		changed = true
	}

	return next, messages, changed
}

func consistent(s State) bool {
	return floor.Valid(s.CurrentFloor) &&
		floor.Valid(s.DestinationFloor) &&
		validStatus(s.Status) &&
		validDoorObstruction(s)
}
