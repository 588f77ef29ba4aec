package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

const (
	defaultDispatchLimit = 8
	defaultQueueDepth    = 4
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultGracePeriod   = 5 * time.Second
)

// Config controls tick cadence and dispatch bounds.
type Config struct {
	Interval      time.Duration
	ComputeLimit  int           // parallel machine ticks, defaults to GOMAXPROCS
	DispatchLimit int           // concurrent publishes across all machines
	QueueDepth    int           // pending payloads per machine before drops
	RetryLimit    int           // total delivery attempts per payload, minimum 1
	RetryBackoff  time.Duration // initial backoff, doubles per attempt
	GracePeriod   time.Duration // shutdown wait for in-flight dispatches
}

func (c Config) withDefaults() Config {
	if c.ComputeLimit <= 0 {
		c.ComputeLimit = runtime.GOMAXPROCS(0)
	}
	if c.DispatchLimit <= 0 {
		c.DispatchLimit = defaultDispatchLimit
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = defaultQueueDepth
	}
	if c.RetryLimit < 1 {
		c.RetryLimit = 1
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = defaultGracePeriod
	}

	return c
}

// Scheduler drives all machine instances on a fixed cadence and fans
// payloads out to the publisher without unbounded concurrency.
//
// Machine ticks run in parallel under ComputeLimit. Each machine has one
// serializing dispatch worker, so its own payloads always leave in
// chronological order; all workers share one semaphore sized DispatchLimit
// so the sink is never hit with unbounded fan-out.
type Scheduler struct {
	cfg      Config
	fleet    *machine.Fleet
	pub      Publisher
	recorder Recorder // optional
	state    atomic.Int32
}

// New creates a scheduler in the Idle state. recorder may be nil.
func New(cfg Config, fleet *machine.Fleet, pub Publisher, recorder Recorder) (*Scheduler, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(ErrInvalidInterval, cfg.Interval.String())
	}
	if fleet == nil || fleet.Size() == 0 {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "fleet is empty")
	}
	if pub == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "publisher is required")
	}

	return &Scheduler{
		cfg:      cfg.withDefaults(),
		fleet:    fleet,
		pub:      pub,
		recorder: recorder,
	}, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(state State) {
	s.state.Store(int32(state))
}

// Run ticks the fleet until ctx is cancelled, then drains in-flight
// dispatches within the grace period. It returns once the scheduler has
// reached Stopped. Per-machine errors never abort the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return errors.New().WithData(ErrNotIdle, s.State().String())
	}

	// Dispatch gets its own context so cancellation of the run context
	// moves to Stopping without immediately abandoning in-flight sends.
	dispatchCtx, abandon := context.WithCancel(context.Background())
	defer abandon()

	machines := s.fleet.Machines
	sem := make(chan struct{}, s.cfg.DispatchLimit)
	queues := make([]chan machine.Payload, len(machines))

	var workers sync.WaitGroup
	for i, m := range machines {
		queues[i] = make(chan machine.Payload, s.cfg.QueueDepth)
		workers.Add(1)
		go s.dispatchWorker(dispatchCtx, m.ID, queues[i], sem, &workers)
	}

	logger.Info().
		Int("machines", len(machines)).
		Dur("interval", s.cfg.Interval).
		Int("dispatch_limit", s.cfg.DispatchLimit).
		Msg("Scheduler running")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	dt := s.cfg.Interval.Seconds()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ts := <-ticker.C:
			s.tick(ctx, ts, dt, queues)
		}
	}

	s.setState(Stopping)
	logger.Info().Dur("grace_period", s.cfg.GracePeriod).Msg("Scheduler stopping")

	for _, q := range queues {
		close(q)
	}

	done := make(chan struct{})
	go func() {
		workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.GracePeriod):
		logger.Warn().Msg("Grace period elapsed, abandoning in-flight dispatches")
		abandon()
		<-done
	}

	s.setState(Stopped)
	logger.Info().Msg("Scheduler stopped")

	return nil
}

// tick computes all machine payloads in parallel, records them, and hands
// them to the per-machine dispatch queues. A full queue means the machine
// is still retrying an older payload; the new one is dropped so a slow sink
// for one device cannot delay any other machine or the cadence itself.
func (s *Scheduler) tick(ctx context.Context, ts time.Time, dt float64, queues []chan machine.Payload) {
	start := time.Now()
	machines := s.fleet.Machines
	payloads := make([]machine.Payload, len(machines))

	computeSem := make(chan struct{}, s.cfg.ComputeLimit)
	var wg sync.WaitGroup
	for i, m := range machines {
		wg.Add(1)
		computeSem <- struct{}{}
		go func(i int, m *machine.Instance) {
			defer wg.Done()
			payloads[i] = m.Tick(ts, dt)
			<-computeSem
		}(i, m)
	}
	wg.Wait()

	for i, payload := range payloads {
		if s.recorder != nil {
			if err := s.recorder.Record(ctx, payload); err != nil {
				logger.Warn().Str("machine", payload.DeviceID).Err(err).Msg("export failed")
			}
		}

		select {
		case queues[i] <- payload:
		default:
			logger.Warn().
				Str("machine", payload.DeviceID).
				Str("error_code", string(ErrExhausted)).
				Msg("Dispatch queue full, payload dropped")
		}
	}

	// A tick slower than the interval is logged; the ticker coalesces the
	// missed deadline so the loop skips and catches up instead of queueing
	// a backlog.
	if elapsed := time.Since(start); elapsed > s.cfg.Interval {
		logger.Warn().
			Str("error_code", string(ErrOverrun)).
			Dur("elapsed", elapsed).
			Dur("interval", s.cfg.Interval).
			Msg("Tick overran interval, skipping to next deadline")
	}
}

// dispatchWorker serializes dispatch for one machine. The shared semaphore
// bounds how many publishes run at once across the whole fleet.
func (s *Scheduler) dispatchWorker(ctx context.Context, deviceID string, queue <-chan machine.Payload, sem chan struct{}, workers *sync.WaitGroup) {
	defer workers.Done()

	for payload := range queue {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			logger.Debug().Str("machine", deviceID).Msg("dispatch abandoned")
			return
		}
		s.publishWithRetry(ctx, payload)
		<-sem
	}
}

// publishWithRetry delivers a payload with at most RetryLimit attempts and
// exponential backoff between them. Spending the whole attempt budget drops
// the payload for this tick only.
func (s *Scheduler) publishWithRetry(ctx context.Context, payload machine.Payload) {
	backoff := s.cfg.RetryBackoff

	for attempt := 1; ; attempt++ {
		err := s.pub.Publish(ctx, payload)
		if err == nil {
			return
		}

		if attempt >= s.cfg.RetryLimit {
			logger.ErrorWithCode(errors.New().Wrap(ErrExhausted, err)).
				Str("machine", payload.DeviceID).
				Int("attempts", attempt).
				Msg("")
			return
		}

		logger.Warn().
			Str("machine", payload.DeviceID).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("Publish failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
