package compute

import "sync"

// vectorPool recycles the scratch vectors of one workload size.
type vectorPool struct {
	pool sync.Pool
	size int
}

func newVectorPool(size int) *vectorPool {
	return &vectorPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				v := make([]float64, size)
				return &v
			},
		},
	}
}

func (p *vectorPool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

func (p *vectorPool) Put(v []float64) {
	if len(v) != p.size {
		return
	}
	clear(v)
	p.pool.Put(&v)
}
