package parallel

import (
	"math/rand"
	"time"
)

const (
	// MinProgress and MaxProgress bound every tracker value.
	MinProgress = 0.0
	MaxProgress = 100.0

	// progressEpsilon absorbs float error when 100 is reached in equal steps.
	progressEpsilon = 1e-9
)

// SerialTask is the progress of the task currently on the serial processor.
type SerialTask struct {
	Progress  float64
	Completed int
	Quota     int
}

// Advance moves the in-flight task forward by step. Reaching 100 completes the
// task; the progress then restarts at 0 unless the quota has been met, in which
// case it stays at 100 and Advance reports true.
func (t *SerialTask) Advance(step float64) bool {
	if t.Done() {
		return true
	}
	next := t.Progress + step
	if next < MaxProgress-progressEpsilon {
		t.Progress = clamp(next)
		return false
	}
	t.Completed++
	if t.Completed >= t.Quota {
		t.Progress = MaxProgress
		return true
	}
	t.Progress = MinProgress
	return false
}

func (t *SerialTask) Done() bool { return t.Completed >= t.Quota }

// Fill marks every task complete.
func (t *SerialTask) Fill() {
	t.Completed = t.Quota
	t.Progress = MaxProgress
}

// Fraction is the overall share of the quota that has been processed.
func (t SerialTask) Fraction() float64 {
	if t.Quota <= 0 {
		return 1
	}
	f := (float64(t.Completed) + t.Progress/MaxProgress) / float64(t.Quota)
	if t.Done() {
		f = 1
	}
	return f
}

// ParallelTaskSet holds one progress value per lane.
type ParallelTaskSet []float64

func NewParallelTaskSet(lanes int) ParallelTaskSet {
	return make(ParallelTaskSet, lanes)
}

// Advance adds base plus a uniform jitter in [0, jitter) to every lane and
// reports whether all lanes have reached 100. Lanes never decrease.
func (p ParallelTaskSet) Advance(base, jitter float64, rng *rand.Rand) bool {
	for i, v := range p {
		if v >= MaxProgress {
			continue
		}
		p[i] = clamp(v + base + rng.Float64()*jitter)
	}
	return p.Done()
}

func (p ParallelTaskSet) Done() bool {
	for _, v := range p {
		if v < MaxProgress {
			return false
		}
	}
	return true
}

func (p ParallelTaskSet) Fill() {
	for i := range p {
		p[i] = MaxProgress
	}
}

// Finished counts lanes at 100.
func (p ParallelTaskSet) Finished() int {
	n := 0
	for _, v := range p {
		if v >= MaxProgress {
			n++
		}
	}
	return n
}

// Fraction is the mean lane progress in [0,1].
func (p ParallelTaskSet) Fraction() float64 {
	if len(p) == 0 {
		return 1
	}
	sum := 0.0
	for _, v := range p {
		sum += v
	}
	return sum / (MaxProgress * float64(len(p)))
}

func (p ParallelTaskSet) Clone() ParallelTaskSet {
	c := make(ParallelTaskSet, len(p))
	copy(c, p)
	return c
}

// Outcome says how a run ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeCompleted: both trackers finished before the deadline.
	OutcomeCompleted
	// OutcomeDeadline: the deadline forced completion.
	OutcomeDeadline
	// OutcomeCanceled: the run was torn down by Stop or its context.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeDeadline:
		return "deadline"
	case OutcomeCanceled:
		return "canceled"
	}
	return "none"
}

// Snapshot is a consistent copy of the simulator state.
type Snapshot struct {
	RunID   string
	Running bool
	Serial  SerialTask
	Lanes   ParallelTaskSet
	Elapsed time.Duration
	// SerialDoneAt and ParallelDoneAt are offsets from start; zero until the
	// tracker finishes on its own.
	SerialDoneAt   time.Duration
	ParallelDoneAt time.Duration
	Outcome        Outcome
}

// Observer is notified after every tick and once more when the run ends.
type Observer interface {
	OnTick(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTick(s Snapshot) { f(s) }

func clamp(v float64) float64 {
	if v < MinProgress {
		return MinProgress
	}
	if v > MaxProgress {
		return MaxProgress
	}
	return v
}
