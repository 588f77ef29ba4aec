package export

import (
	"context"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

type service struct {
	sinks []Recorder
}

// NewService builds a recorder from the configured sinks. With no sink
// configured it returns a recorder that discards everything, so callers
// never need a nil check.
func NewService(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	cfg = cfg.withDefaults()
	log := logger.Default()

	var sinks []Recorder

	if cfg.JSONPath != "" {
		sink, err := newFileRecorder(cfg.JSONPath, cfg.BatchTimeout, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if cfg.DBPath != "" {
		sink, err := newArchiveRecorder(cfg, log)
		if err != nil {
			closeAll(sinks)

			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 0 {
		return &noopRecorder{}, nil
	}

	return &service{sinks: sinks}, nil
}

func (s *service) Record(ctx context.Context, payload machine.Payload) error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (s *service) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func closeAll(sinks []Recorder) {
	for _, sink := range sinks {
		_ = sink.Close()
	}
}

type noopRecorder struct{}

func (*noopRecorder) Record(context.Context, machine.Payload) error { return nil }

func (*noopRecorder) Close() error { return nil }
