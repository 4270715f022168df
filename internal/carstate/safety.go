package carstate

import "github.com/liftctl/liftctl/internal/safetycheck"

// RunSafetyCheck applies the safety invariant checks to the current state
// and atomically commits any correction, returning whatever messages the
// check produced (for the caller to print, mirroring the original
// monitor's direct writes to stdout).
func (s *Store) RunSafetyCheck() (messages []string, changed bool) {
	s.mu.Lock()
	in := toCheckState(s.state)
	next, msgs, didChange := safetycheck.Check(in)
	if didChange {
		s.state = fromCheckState(s.state, next)
		s.generation++
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	return msgs, didChange
}

func toCheckState(s Snapshot) safetycheck.State {
	return safetycheck.State{
		CurrentFloor:          s.CurrentFloor,
		DestinationFloor:      s.DestinationFloor,
		Status:                s.Status,
		OpenButton:            s.OpenButton,
		CloseButton:           s.CloseButton,
		DoorObstruction:       s.DoorObstruction,
		Overload:              s.Overload,
		EmergencyStop:         s.EmergencyStop,
		IndividualServiceMode: s.IndividualServiceMode,
		EmergencyMode:         s.EmergencyMode,
	}
}

func fromCheckState(base Snapshot, c safetycheck.State) Snapshot {
	base.CurrentFloor = c.CurrentFloor
	base.DestinationFloor = c.DestinationFloor
	base.Status = c.Status
	base.OpenButton = c.OpenButton
	base.CloseButton = c.CloseButton
	base.DoorObstruction = c.DoorObstruction
	base.Overload = c.Overload
	base.EmergencyStop = c.EmergencyStop
	base.IndividualServiceMode = c.IndividualServiceMode
	base.EmergencyMode = c.EmergencyMode
	return base
}
