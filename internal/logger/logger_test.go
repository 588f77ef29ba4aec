package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
)

// Components that take an injected logger receive Default(), so it must
// satisfy the Logger interface and be usable even before Init runs.
func TestDefaultSatisfiesLogger(t *testing.T) {
	var l logger.Logger = logger.Default()
	require.NotNil(t, l)

	assert.NotPanics(t, func() {
		l.Debug().Str("sink", "archive").Msg("")
		l.Info().Int("rows", 64).Msg("Batch flushed")
		l.Warn().Msg("")
		l.Error().Err(errors.New().New(errors.ErrOperationFailed)).Msg("flush failed")
		l.ErrorWithCode(errors.New().New(errors.ErrShutdownFailed)).Msg("")
	})
}
