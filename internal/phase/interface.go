package phase

import "context"

// Phase is one stage of the pipeline. State is derived entirely from the
// artifact store, never from separate status files; a phase whose expected
// outputs exist is complete and can be skipped on resume.
type Phase interface {
	Name() string
	State() State
	Run(ctx context.Context) error
}

// State describes a phase's progress as derived from its artifacts.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
