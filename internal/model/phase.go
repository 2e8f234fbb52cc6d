package model

// Phase is a room's position in its lifecycle
type Phase string

const (
	PhaseLobby      Phase = "lobby"      // Accepting joins and config changes
	PhaseSubmitting Phase = "submitting" // Players submit songs
	PhasePlaying    Phase = "playing"    // Reserved for playback/voting
	PhaseEnded      Phase = "ended"      // Terminal
)

var phaseOrder = map[Phase]int{
	PhaseLobby:      0,
	PhaseSubmitting: 1,
	PhasePlaying:    2,
	PhaseEnded:      3,
}

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// CanTransitionTo reports whether target is the immediate successor of p.
// Phases only ever move forward one step at a time.
func (p Phase) CanTransitionTo(target Phase) bool {
	from, ok := phaseOrder[p]
	if !ok {
		return false
	}
	to, ok := phaseOrder[target]
	if !ok {
		return false
	}
	return to == from+1
}

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}
