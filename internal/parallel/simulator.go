package parallel

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/san-kum/gpunexus/internal/log"
)

const (
	DefaultTasks                = 64
	DefaultLanes                = 64
	DefaultSerialTick           = 16 * time.Millisecond
	DefaultSerialTasksPerSecond = 12.0
	DefaultParallelTick         = 16 * time.Millisecond
	DefaultParallelBaseStep     = 0.5
	DefaultParallelJitter       = 1.0
	DefaultDeadline             = 8 * time.Second
)

type Config struct {
	// Tasks is the serial quota.
	Tasks int
	// Lanes is the number of parallel trackers.
	Lanes                int
	SerialTick           time.Duration
	SerialTasksPerSecond float64
	ParallelTick         time.Duration
	ParallelBaseStep     float64
	ParallelJitter       float64
	Deadline             time.Duration
	// Seed feeds the lane jitter; 0 seeds from the clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Tasks:                DefaultTasks,
		Lanes:                DefaultLanes,
		SerialTick:           DefaultSerialTick,
		SerialTasksPerSecond: DefaultSerialTasksPerSecond,
		ParallelTick:         DefaultParallelTick,
		ParallelBaseStep:     DefaultParallelBaseStep,
		ParallelJitter:       DefaultParallelJitter,
		Deadline:             DefaultDeadline,
	}
}

// TicksPerTask is the whole number of serial ticks one task takes: the
// configured rate rounded to the tick grid, never less than one.
func (c Config) TicksPerTask() int {
	return max(1, int(math.Round(1/(c.SerialTick.Seconds()*c.SerialTasksPerSecond))))
}

// SerialStep is the progress added per serial tick. It divides 100 evenly so
// a task ends exactly on a tick and the next one starts from 0.
func (c Config) SerialStep() float64 {
	return MaxProgress / float64(c.TicksPerTask())
}

// SerialRate is the effective serial throughput in tasks per second.
func (c Config) SerialRate() float64 {
	return 1 / (float64(c.TicksPerTask()) * c.SerialTick.Seconds())
}

func (c Config) Validate() error {
	if c.Tasks < 1 {
		return fmt.Errorf("%w: tasks must be at least 1, got %d", ErrInvalidConfig, c.Tasks)
	}
	if c.Lanes < 1 {
		return fmt.Errorf("%w: lanes must be at least 1, got %d", ErrInvalidConfig, c.Lanes)
	}
	if c.SerialTick <= 0 || c.ParallelTick <= 0 {
		return fmt.Errorf("%w: ticks must be positive", ErrInvalidConfig)
	}
	if c.SerialTasksPerSecond <= 0 {
		return fmt.Errorf("%w: serial rate must be positive, got %f", ErrInvalidConfig, c.SerialTasksPerSecond)
	}
	if c.ParallelBaseStep < 0 || c.ParallelJitter < 0 {
		return fmt.Errorf("%w: parallel step and jitter must not be negative", ErrInvalidConfig)
	}
	if c.ParallelBaseStep == 0 && c.ParallelJitter == 0 {
		return fmt.Errorf("%w: parallel lanes would never advance", ErrInvalidConfig)
	}
	if c.Deadline <= 0 {
		return fmt.Errorf("%w: deadline must be positive, got %s", ErrInvalidConfig, c.Deadline)
	}
	return nil
}

type Option func(*Simulator)

func WithLogger(l log.Logger) Option {
	return func(s *Simulator) {
		s.logger = l.WithValues(log.Kv{"component": "parallel"})
	}
}

// Simulator owns the serial tracker, the parallel lanes and the timers that
// advance them. It is safe for concurrent use.
type Simulator struct {
	cfg    Config
	logger log.Logger

	mu             sync.Mutex
	rng            *rand.Rand
	serial         SerialTask
	lanes          ParallelTaskSet
	running        bool
	runID          string
	startedAt      time.Time
	elapsed        time.Duration
	serialDoneAt   time.Duration
	parallelDoneAt time.Duration
	outcome        Outcome
	cancel         context.CancelFunc
	done           chan struct{}
	observers      []Observer
}

func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	done := make(chan struct{})
	close(done)

	s := &Simulator{
		cfg:    cfg,
		logger: log.Noop,
		rng:    rand.New(rand.NewSource(seed)),
		serial: SerialTask{Quota: cfg.Tasks},
		lanes:  NewParallelTaskSet(cfg.Lanes),
		done:   done,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Start begins a new run. It returns false and leaves every tracker untouched
// when a run is already active.
func (s *Simulator) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debugf("start ignored, run %s still active", s.runID)
		return false
	}

	s.serial = SerialTask{Quota: s.cfg.Tasks}
	s.lanes = NewParallelTaskSet(s.cfg.Lanes)
	s.running = true
	s.runID = ulid.Make().String()
	s.startedAt = time.Now()
	s.elapsed = 0
	s.serialDoneAt = 0
	s.parallelDoneAt = 0
	s.outcome = OutcomeNone

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	runID := s.runID
	s.mu.Unlock()

	s.logger.WithValues(log.Kv{"run": runID}).Infof("simulation started (%d tasks at %.1f/s, %d lanes, deadline %s)", s.cfg.Tasks, s.cfg.SerialRate(), s.cfg.Lanes, s.cfg.Deadline)
	go s.run(runCtx, cancel, done)
	return true
}

// Stop cancels the active run, if any, and waits for its timers to be released.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done returns a channel closed when the current run ends. Before the first
// run it is already closed.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() Snapshot {
	elapsed := s.elapsed
	if s.running {
		elapsed = time.Since(s.startedAt)
	}
	return Snapshot{
		RunID:          s.runID,
		Running:        s.running,
		Serial:         s.serial,
		Lanes:          s.lanes.Clone(),
		Elapsed:        elapsed,
		SerialDoneAt:   s.serialDoneAt,
		ParallelDoneAt: s.parallelDoneAt,
		Outcome:        s.outcome,
	}
}

func (s *Simulator) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	serialTicker := time.NewTicker(s.cfg.SerialTick)
	defer serialTicker.Stop()
	parallelTicker := time.NewTicker(s.cfg.ParallelTick)
	defer parallelTicker.Stop()
	deadline := time.NewTimer(s.cfg.Deadline)
	defer deadline.Stop()

	serialC, parallelC := serialTicker.C, parallelTicker.C
	step := s.cfg.SerialStep()

	for {
		var snap Snapshot
		select {
		case <-ctx.Done():
			s.notify(s.finish(OutcomeCanceled))
			return
		case <-deadline.C:
			s.notify(s.expire())
			return
		case <-serialC:
			var finished bool
			snap, finished = s.tickSerial(step)
			if finished {
				serialTicker.Stop()
				serialC = nil
			}
		case <-parallelC:
			var finished bool
			snap, finished = s.tickParallel()
			if finished {
				parallelTicker.Stop()
				parallelC = nil
			}
		}

		if serialC == nil && parallelC == nil {
			s.notify(s.finish(OutcomeCompleted))
			return
		}
		s.notify(snap)
	}
}

func (s *Simulator) tickSerial(step float64) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	finished := s.serial.Advance(step)
	if finished && s.serialDoneAt == 0 {
		s.serialDoneAt = time.Since(s.startedAt)
	}
	return s.snapshotLocked(), finished
}

func (s *Simulator) tickParallel() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	finished := s.lanes.Advance(s.cfg.ParallelBaseStep, s.cfg.ParallelJitter, s.rng)
	if finished && s.parallelDoneAt == 0 {
		s.parallelDoneAt = time.Since(s.startedAt)
	}
	return s.snapshotLocked(), finished
}

// expire forces both trackers to completion.
func (s *Simulator) expire() Snapshot {
	s.mu.Lock()
	s.serial.Fill()
	s.lanes.Fill()
	s.mu.Unlock()
	return s.finish(OutcomeDeadline)
}

func (s *Simulator) finish(outcome Outcome) Snapshot {
	s.mu.Lock()
	s.running = false
	s.outcome = outcome
	s.elapsed = time.Since(s.startedAt)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.WithValues(log.Kv{"run": snap.RunID}).Infof("simulation %s after %s (serial %d/%d, lanes %d/%d)",
		outcome, snap.Elapsed.Round(time.Millisecond), snap.Serial.Completed, snap.Serial.Quota, snap.Lanes.Finished(), len(snap.Lanes))
	return snap
}

func (s *Simulator) notify(snap Snapshot) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.OnTick(snap)
	}
}
