package compute

import "testing"

func TestVectorPool(t *testing.T) {
	p := newVectorPool(4)

	v := p.Get()
	if len(v) != 4 {
		t.Fatalf("expected len 4, got %d", len(v))
	}
	v[0] = 7
	p.Put(v)

	// Recycled or fresh, a vector must come back zeroed.
	if got := p.Get(); got[0] != 0 {
		t.Errorf("expected zeroed vector, got %v", got)
	}

	p.Put(make([]float64, 3))
}

func TestTaskDeterministic(t *testing.T) {
	w := Workload{Tasks: 2, Size: 8, Rounds: 3}
	p := newVectorPool(w.Size)
	if a, b := w.task(1, p), w.task(1, p); a != b {
		t.Errorf("task(1) not deterministic: %v != %v", a, b)
	}
}
