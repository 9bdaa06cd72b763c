package compute

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// CPUBackend splits the tasks into contiguous chunks, one per worker.
type CPUBackend struct {
	workers int
}

// NewCPUBackend uses runtime.NumCPU workers when workers is not positive.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return "parallel" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Run(ctx context.Context, w Workload) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}

	n := w.Tasks
	workers := c.workers
	if workers > n {
		workers = n
	}

	res := newResult(c.Name(), workers, n)
	sums := make([]float64, n)
	pool := newVectorPool(w.Size)

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers
	start := time.Now()

	for worker := 0; worker < workers; worker++ {
		lo := worker * chunkSize
		hi := lo + chunkSize
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				sums[i] = w.task(i, pool)
				res.Finished[i] = time.Since(start)
			}
		}()
	}

	wg.Wait()
	res.Elapsed = time.Since(start)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	res.Checksum = checksum(sums)
	return res, nil
}
