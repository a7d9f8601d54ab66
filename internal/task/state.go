package task

// State is a job's position in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether s accepts no further transitions (except the
// explicit Failed → Pending retry edge).
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// transitions is the full edge set of the job state machine. Pending →
// Paused covers pausing a not-yet-dispatched job; Pending → Failed covers
// the start-time output-collision check; Failed → Pending is the manual
// retry edge. Succeeded and Cancelled have no outgoing edges.
var transitions = map[State][]State{
	StatePending: {StateRunning, StatePaused, StateCancelled, StateFailed},
	StateRunning: {StateSucceeded, StateFailed, StatePaused, StateCancelled},
	StatePaused:  {StatePending, StateCancelled},
	StateFailed:  {StatePending},
}

func canTransition(from, to State) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
