package export

import (
	"context"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// Recorder persists machine payloads locally, independent of the telemetry
// platform. Implementations are safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, payload machine.Payload) error
	Close() error
}

const (
	defaultDirPerm      = 0o755
	defaultBatchSize    = 64
	defaultBatchTimeout = 5 * time.Second
)

// Config selects the local sinks. Empty paths disable the respective sink;
// with both empty the service records nothing.
type Config struct {
	// JSONPath appends one JSON object per payload (JSON lines).
	JSONPath string
	// DBPath archives individual readings into a SQLite database.
	DBPath string
	// BatchSize is the number of payloads buffered before an archive flush.
	BatchSize int
	// BatchTimeout bounds how long a buffered payload waits for a flush.
	BatchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = defaultBatchTimeout
	}

	return c
}

func (c Config) Validate() error {
	if c.JSONPath != "" && c.JSONPath == c.DBPath {
		return errors.New().WithData(ErrInvalidPath, c.JSONPath)
	}

	return nil
}
