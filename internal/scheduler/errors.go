package scheduler

import "codeberg.org/vasker/fleetsim/internal/errors"

const (
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrNotIdle         = errors.ErrorCode("scheduler_not_idle")
	ErrOverrun         = errors.ErrSchedulerOverrun
	ErrExhausted       = errors.ErrDispatchExhausted
)
