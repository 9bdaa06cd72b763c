package compute

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultTasks = 64
	DefaultSize  = 256
)

// Workload is a batch of independent dense matrix-vector products.
type Workload struct {
	Tasks int
	Size  int
	// Rounds repeats each product, feeding the output back as input.
	Rounds int
}

func DefaultWorkload() Workload {
	return Workload{Tasks: DefaultTasks, Size: DefaultSize, Rounds: 4}
}

func (w Workload) Validate() error {
	if w.Tasks < 1 {
		return fmt.Errorf("tasks must be at least 1, got %d", w.Tasks)
	}
	if w.Size < 1 {
		return fmt.Errorf("size must be at least 1, got %d", w.Size)
	}
	if w.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", w.Rounds)
	}
	return nil
}

// task runs task i and returns the sum of its final vector. Matrix entries are
// generated on the fly so every task has the same cost and no shared memory.
func (w Workload) task(i int, pool *vectorPool) float64 {
	n := w.Size
	vec, out := pool.Get(), pool.Get()
	defer func() {
		pool.Put(vec)
		pool.Put(out)
	}()
	for j := range vec {
		vec[j] = 1.0 / float64(j+1)
	}

	seed := float64(i + 1)
	for r := 0; r < w.Rounds; r++ {
		for row := 0; row < n; row++ {
			sum := 0.0
			for col := 0; col < n; col++ {
				sum += math.Sin(seed*float64(row+1)+float64(col)) * vec[col]
			}
			out[row] = sum / float64(n)
		}
		vec, out = out, vec
	}

	total := 0.0
	for _, v := range vec {
		total += v
	}
	return total
}

// Result is the outcome of one backend run.
type Result struct {
	Backend string
	Workers int
	Elapsed time.Duration
	// Finished holds, per task index, the offset from start at which it ended.
	Finished []time.Duration
	Checksum float64
}

func newResult(backend string, workers, tasks int) Result {
	return Result{
		Backend:  backend,
		Workers:  workers,
		Finished: make([]time.Duration, tasks),
	}
}

func checksum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Throughput is completed tasks per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(len(r.Finished)) / r.Elapsed.Seconds()
}

// Timeline samples the completed percentage at samples evenly spaced points
// over span.
func (r Result) Timeline(span time.Duration, samples int) []float64 {
	if samples < 2 {
		samples = 2
	}
	out := make([]float64, samples)
	if len(r.Finished) == 0 {
		return out
	}
	for s := 0; s < samples; s++ {
		at := time.Duration(float64(span) * float64(s) / float64(samples-1))
		done := 0
		for _, f := range r.Finished {
			if f <= at {
				done++
			}
		}
		out[s] = 100 * float64(done) / float64(len(r.Finished))
	}
	return out
}
