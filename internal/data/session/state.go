package session

import "fmt"

// State is the lifecycle position of a Session.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateCommitted
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateCommitted:
		return "committed"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Mode selects the capabilities a session is opened with.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}
