// Persistent server channel with fixed-interval reconnect
package ws

import "sync"

// Status is the channel condition shown to the operator.
type Status struct {
	Connected    bool
	Reconnecting bool
}

// State holds the current channel status for consumers to poll.
type State struct {
	mu     sync.Mutex
	status Status
}

// NewState returns a disconnected state.
func NewState() *State {
	return &State{}
}

// Get returns the current status.
func (s *State) Get() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *State) set(connected, reconnecting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Connected: connected, Reconnecting: reconnecting}
}
