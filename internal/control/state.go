package control

import (
	"log/slog"

	"github.com/vietddude/screencore/internal/metrics"
)

// State is the single application state owned by the supervisor.
type State int

const (
	StateInitializing State = iota
	StateRunningPrimary
	StateRunningFallback
	StateError
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunningPrimary:
		return "running_primary"
	case StateRunningFallback:
		return "running_fallback"
	case StateError:
		return "error"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ValidTransitions defines allowed state transitions. Error is a terminal
// degraded-spin state except for the shutdown path; Shutdown is terminal.
var ValidTransitions = map[State][]State{
	StateInitializing:    {StateRunningPrimary, StateRunningFallback, StateError, StateShutdown},
	StateRunningPrimary:  {StateRunningFallback, StateError, StateShutdown},
	StateRunningFallback: {StateError, StateShutdown},
	StateError:           {StateShutdown},
	StateShutdown:        {},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// setState performs a validated transition. Callers hold the supervisor lock.
func (s *Supervisor) setState(to State) {
	if s.state == to {
		return
	}
	if !CanTransition(s.state, to) {
		slog.Error("Invalid state transition", "from", s.state.String(), "to", to.String())
		return
	}

	slog.Info("State transition", "from", s.state.String(), "to", to.String())
	s.state = to
	metrics.AppState.Set(float64(to))
}
