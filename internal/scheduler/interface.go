package scheduler

import (
	"context"

	"codeberg.org/vasker/fleetsim/internal/machine"
)

// Publisher transmits one machine's payload to the telemetry sink.
// Implementations resolve their own device credentials; a failed publish is
// transient and will be retried by the scheduler.
type Publisher interface {
	Publish(ctx context.Context, payload machine.Payload) error
}

// Recorder receives every generated payload for local export. Recorder
// failures are logged and never affect dispatch.
type Recorder interface {
	Record(ctx context.Context, payload machine.Payload) error
}

// State tracks the scheduler lifecycle.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
