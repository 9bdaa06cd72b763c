package compute

import (
	"context"
	"time"
)

type Backend interface {
	Name() string
	Run(ctx context.Context, w Workload) (Result, error)
}

// SerialBackend runs every task on the calling goroutine.
type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string { return "serial" }

func (s *SerialBackend) Run(ctx context.Context, w Workload) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}

	res := newResult(s.Name(), 1, w.Tasks)
	sums := make([]float64, w.Tasks)
	pool := newVectorPool(w.Size)
	start := time.Now()
	for i := 0; i < w.Tasks; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sums[i] = w.task(i, pool)
		res.Finished[i] = time.Since(start)
	}
	res.Elapsed = time.Since(start)
	res.Checksum = checksum(sums)
	return res, nil
}
