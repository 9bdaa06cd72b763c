// Package pipeline tracks which rendering-pipeline stage is highlighted and
// optionally walks through the stages on a fixed period.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/gpunexus/internal/gpu"
)

// DefaultInterval is how long each stage stays active while playing.
const DefaultInterval = 2 * time.Second

var ErrStageOutOfRange = errors.New("pipeline: stage out of range")

type Pipeline struct {
	stages   []gpu.Stage
	interval time.Duration

	mu      sync.Mutex
	active  int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(stages []gpu.Stage, interval time.Duration) *Pipeline {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pipeline{stages: stages, interval: interval}
}

func (p *Pipeline) Stages() []gpu.Stage { return p.stages }

func (p *Pipeline) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Pipeline) ActiveStage() gpu.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stages[p.active]
}

func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Advance moves to the next stage, wrapping after the last one.
func (p *Pipeline) Advance() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.stages) == 0 {
		return 0
	}
	p.active = (p.active + 1) % len(p.stages)
	return p.active
}

// Play starts auto-advancing. Calling Play while playing is a no-op.
func (p *Pipeline) Play(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || len(p.stages) == 0 {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.running = true
	p.cancel = cancel
	p.done = done
	go p.loop(runCtx, done)
}

func (p *Pipeline) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.done == done {
				p.running = false
				p.cancel = nil
				p.done = nil
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.Advance()
		}
	}
}

// Pause stops auto-advancing and waits for the ticker goroutine to exit.
func (p *Pipeline) Pause() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.running = false
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Toggle flips between playing and paused and returns the new running state.
func (p *Pipeline) Toggle(ctx context.Context) bool {
	if p.Running() {
		p.Pause()
		return false
	}
	p.Play(ctx)
	return true
}

// Reset pauses and returns to the first stage.
func (p *Pipeline) Reset() {
	p.Pause()
	p.mu.Lock()
	p.active = 0
	p.mu.Unlock()
}

// Select makes stage i active, pauses auto-advance and returns the stage so
// it can be explained.
func (p *Pipeline) Select(i int) (gpu.Stage, error) {
	if i < 0 || i >= len(p.stages) {
		return gpu.Stage{}, fmt.Errorf("%w: %d", ErrStageOutOfRange, i)
	}
	p.Pause()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = i
	return p.stages[i], nil
}

// Close releases the auto-advance ticker.
func (p *Pipeline) Close() { p.Pause() }
