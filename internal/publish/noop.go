package publish

import (
	"context"

	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// NoopPublisher discards payloads. Used for local-only runs where the
// exporter is the sole consumer.
type NoopPublisher struct{}

func NewNoop() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(_ context.Context, payload machine.Payload) error {
	logger.Debug().
		Str("device_id", payload.DeviceID).
		Int("sensors", len(payload.Readings)).
		Msg("Payload discarded (no publisher configured)")

	return nil
}

func (*NoopPublisher) Close() error {
	return nil
}
