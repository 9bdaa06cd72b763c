package parallel

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestSerialTask_Advance(t *testing.T) {
	task := SerialTask{Quota: 3}

	for i := 0; i < 3; i++ {
		if task.Advance(40) {
			t.Fatalf("task reported done too early at step %d", i)
		}
	}
	if task.Completed != 1 {
		t.Errorf("expected 1 completed task, got %d", task.Completed)
	}
	if task.Progress != 0 {
		t.Errorf("expected progress reset to 0, got %f", task.Progress)
	}

	for !task.Advance(40) {
	}
	if task.Completed != 3 {
		t.Errorf("expected quota reached, got %d", task.Completed)
	}
	if task.Progress != MaxProgress {
		t.Errorf("expected progress to stay at 100, got %f", task.Progress)
	}
	if !task.Advance(40) || task.Completed != 3 {
		t.Error("advancing a finished task must be a no-op")
	}
}

func TestSerialTask_Fraction(t *testing.T) {
	tests := []struct {
		task SerialTask
		want float64
	}{
		{SerialTask{Quota: 4}, 0},
		{SerialTask{Quota: 4, Completed: 2}, 0.5},
		{SerialTask{Quota: 4, Completed: 1, Progress: 50}, 0.375},
		{SerialTask{Quota: 4, Completed: 4, Progress: 100}, 1},
	}
	for _, tt := range tests {
		if got := tt.task.Fraction(); got != tt.want {
			t.Errorf("Fraction(%+v) = %v, want %v", tt.task, got, tt.want)
		}
	}
}

func TestParallelTaskSet_AdvanceClampsAndNeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	lanes := NewParallelTaskSet(64)
	prev := lanes.Clone()

	for i := 0; i < 500 && !lanes.Done(); i++ {
		lanes.Advance(0.5, 1.0, rng)
		for j, v := range lanes {
			if v < MinProgress || v > MaxProgress {
				t.Fatalf("lane %d out of range: %f", j, v)
			}
			if v < prev[j] {
				t.Fatalf("lane %d decreased from %f to %f", j, prev[j], v)
			}
		}
		prev = lanes.Clone()
	}

	if !lanes.Done() {
		t.Error("expected all lanes to finish")
	}
	if lanes.Finished() != 64 {
		t.Errorf("expected 64 finished lanes, got %d", lanes.Finished())
	}
}

func TestParallelTaskSet_JitterSpreadsLanes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lanes := NewParallelTaskSet(16)
	lanes.Advance(0.5, 1.0, rng)

	distinct := map[float64]bool{}
	for _, v := range lanes {
		distinct[v] = true
	}
	if len(distinct) < 2 {
		t.Error("expected jitter to produce different lane values")
	}
}

func TestParallelTaskSet_Fill(t *testing.T) {
	lanes := ParallelTaskSet{0, 12.5, 99}
	lanes.Fill()
	if !lanes.Done() || lanes.Fraction() != 1 {
		t.Errorf("expected filled lanes, got %v", lanes)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"no tasks", func(c *Config) { c.Tasks = 0 }, false},
		{"no lanes", func(c *Config) { c.Lanes = 0 }, false},
		{"zero tick", func(c *Config) { c.SerialTick = 0 }, false},
		{"zero rate", func(c *Config) { c.SerialTasksPerSecond = 0 }, false},
		{"negative jitter", func(c *Config) { c.ParallelJitter = -1 }, false},
		{"frozen lanes", func(c *Config) { c.ParallelBaseStep, c.ParallelJitter = 0, 0 }, false},
		{"zero deadline", func(c *Config) { c.Deadline = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tt.valid)
			}
		})
	}
}

func TestConfig_SerialStep(t *testing.T) {
	tests := []struct {
		name         string
		tick         time.Duration
		rate         float64
		ticksPerTask int
	}{
		{"default", 16 * time.Millisecond, 12, 5},
		{"one percent per frame", 4 * time.Millisecond, 2.5, 100},
		{"faster than the tick", time.Millisecond, 5000, 1},
		{"thirds", 10 * time.Millisecond, 100.0 / 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SerialTick = tt.tick
			cfg.SerialTasksPerSecond = tt.rate

			if got := cfg.TicksPerTask(); got != tt.ticksPerTask {
				t.Errorf("expected %d ticks per task, got %d", tt.ticksPerTask, got)
			}
			if got := cfg.SerialStep() * float64(cfg.TicksPerTask()); math.Abs(got-MaxProgress) > 1e-9 {
				t.Errorf("steps per task should sum to 100, got %f", got)
			}
		})
	}
}

// Counting Advance calls until the quota is met gives the real serial time.
func TestSerialTask_QuotaTime(t *testing.T) {
	for _, rate := range []float64{12, 2.5, 100.0 / 3, 7} {
		cfg := DefaultConfig()
		cfg.SerialTasksPerSecond = rate
		if rate == 2.5 {
			cfg.SerialTick = 4 * time.Millisecond
		}

		task := SerialTask{Quota: cfg.Tasks}
		step := cfg.SerialStep()
		ticks := 1
		for !task.Advance(step) {
			ticks++
		}

		if want := cfg.Tasks * cfg.TicksPerTask(); ticks != want {
			t.Errorf("rate %.2f: expected %d ticks, got %d", rate, want, ticks)
		}

		// Rounding to the tick grid moves each task by at most half a tick.
		got := time.Duration(ticks) * cfg.SerialTick
		want := time.Duration(float64(cfg.Tasks) / rate * float64(time.Second))
		slack := time.Duration(cfg.Tasks) * cfg.SerialTick / 2
		if diff := got - want; diff > slack || diff < -slack {
			t.Errorf("rate %.2f: quota took %s, want %s within %s", rate, got, want, slack)
		}
		if eff := float64(cfg.Tasks) / got.Seconds(); math.Abs(eff-cfg.SerialRate()) > 1e-6 {
			t.Errorf("rate %.2f: effective rate %.3f, SerialRate reports %.3f", rate, eff, cfg.SerialRate())
		}
	}
}
