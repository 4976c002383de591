package loader

import "fmt"

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateFetchingManifest
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingManifest:
		return "fetching_manifest"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText lets records and API responses carry the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further progress is possible.
func (s State) Terminal() bool { return s == StateComplete || s == StateError }

// transitions lists the legal successors of every state. A completed session
// can still fall into ERROR when someone tries to reuse it, and a failed one
// stays in ERROR when reused again.
var transitions = map[State][]State{
	StateIdle:             {StateFetchingManifest},
	StateFetchingManifest: {StateComplete, StateError},
	StateComplete:         {StateError},
	StateError:            {StateError},
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
