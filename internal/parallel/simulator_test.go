package parallel_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gpunexus/internal/parallel"
)

type recorder struct {
	mu    sync.Mutex
	snaps []parallel.Snapshot
}

func (r *recorder) OnTick(s parallel.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []parallel.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]parallel.Snapshot, len(r.snaps))
	copy(out, r.snaps)
	return out
}

// slowSerial never finishes its quota before the deadline.
func slowSerial(deadline time.Duration) parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.SerialTick = time.Millisecond
	cfg.SerialTasksPerSecond = 5
	cfg.ParallelTick = time.Millisecond
	cfg.ParallelBaseStep = 0.01
	cfg.ParallelJitter = 0.01
	cfg.Deadline = deadline
	cfg.Seed = 42
	return cfg
}

func quickCompletion() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.Tasks = 4
	cfg.Lanes = 8
	cfg.SerialTick = time.Millisecond
	cfg.SerialTasksPerSecond = 1000
	cfg.ParallelTick = time.Millisecond
	cfg.ParallelBaseStep = 25
	cfg.ParallelJitter = 10
	cfg.Deadline = 10 * time.Second
	cfg.Seed = 7
	return cfg
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("rejects invalid configs", func() {
		cfg := parallel.DefaultConfig()
		cfg.Lanes = 0
		_, err := parallel.New(cfg)
		Expect(errors.Is(err, parallel.ErrInvalidConfig)).To(BeTrue())
	})

	It("starts idle with a closed done channel", func() {
		sim, err := parallel.New(parallel.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.Running()).To(BeFalse())
		Eventually(sim.Done()).Should(BeClosed())
		Expect(sim.Snapshot().Outcome).To(Equal(parallel.OutcomeNone))
	})

	It("forces both trackers to 100 when the deadline fires", func() {
		sim, err := parallel.New(slowSerial(150 * time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.Start(ctx)).To(BeTrue())
		Expect(sim.Running()).To(BeTrue())
		Eventually(sim.Done(), 2*time.Second).Should(BeClosed())

		snap := sim.Snapshot()
		Expect(snap.Running).To(BeFalse())
		Expect(snap.Outcome).To(Equal(parallel.OutcomeDeadline))
		Expect(snap.Serial.Progress).To(Equal(parallel.MaxProgress))
		Expect(snap.Serial.Completed).To(Equal(snap.Serial.Quota))
		Expect(snap.Lanes).To(HaveLen(64))
		for _, v := range snap.Lanes {
			Expect(v).To(Equal(parallel.MaxProgress))
		}
		Expect(snap.SerialDoneAt).To(BeZero())
	})

	It("ends on natural completion before the deadline", func() {
		sim, err := parallel.New(quickCompletion())
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.Start(ctx)).To(BeTrue())
		Eventually(sim.Done(), 2*time.Second).Should(BeClosed())

		snap := sim.Snapshot()
		Expect(snap.Outcome).To(Equal(parallel.OutcomeCompleted))
		Expect(snap.Serial.Completed).To(Equal(4))
		Expect(snap.Lanes.Done()).To(BeTrue())
		Expect(snap.SerialDoneAt).To(BeNumerically(">", 0))
		Expect(snap.ParallelDoneAt).To(BeNumerically(">", 0))
		Expect(snap.Elapsed).To(BeNumerically("<", 10*time.Second))
	})

	It("ignores a start request while a run is active", func() {
		sim, err := parallel.New(slowSerial(5 * time.Second))
		Expect(err).NotTo(HaveOccurred())
		defer sim.Stop()

		Expect(sim.Start(ctx)).To(BeTrue())
		Eventually(func() float64 {
			return sim.Snapshot().Lanes.Fraction()
		}).Should(BeNumerically(">", 0))

		before := sim.Snapshot()
		Expect(sim.Start(ctx)).To(BeFalse())
		after := sim.Snapshot()

		Expect(after.RunID).To(Equal(before.RunID))
		Expect(after.Serial.Completed).To(BeNumerically(">=", before.Serial.Completed))
		for i := range before.Lanes {
			Expect(after.Lanes[i]).To(BeNumerically(">=", before.Lanes[i]))
		}
	})

	It("keeps every tracker in range and lanes non-decreasing on every tick", func() {
		sim, err := parallel.New(quickCompletion())
		Expect(err).NotTo(HaveOccurred())
		rec := &recorder{}
		sim.AddObserver(rec)

		Expect(sim.Start(ctx)).To(BeTrue())
		Eventually(sim.Done(), 2*time.Second).Should(BeClosed())

		snaps := rec.all()
		Expect(snaps).NotTo(BeEmpty())
		var prev parallel.ParallelTaskSet
		for _, s := range snaps {
			Expect(s.Serial.Progress).To(BeNumerically(">=", parallel.MinProgress))
			Expect(s.Serial.Progress).To(BeNumerically("<=", parallel.MaxProgress))
			for i, v := range s.Lanes {
				Expect(v).To(BeNumerically(">=", parallel.MinProgress))
				Expect(v).To(BeNumerically("<=", parallel.MaxProgress))
				if prev != nil {
					Expect(v).To(BeNumerically(">=", prev[i]))
				}
			}
			prev = s.Lanes
		}
		Expect(snaps[len(snaps)-1].Running).To(BeFalse())
	})

	It("can be restarted once the previous run has ended", func() {
		sim, err := parallel.New(quickCompletion())
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.Start(ctx)).To(BeTrue())
		Eventually(sim.Done(), 2*time.Second).Should(BeClosed())
		first := sim.Snapshot().RunID

		Expect(sim.Start(ctx)).To(BeTrue())
		Expect(sim.Snapshot().RunID).NotTo(Equal(first))
		Eventually(sim.Done(), 2*time.Second).Should(BeClosed())
	})

	It("releases its timers on Stop without forcing completion", func() {
		sim, err := parallel.New(slowSerial(5 * time.Second))
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.Start(ctx)).To(BeTrue())
		sim.Stop()

		snap := sim.Snapshot()
		Expect(snap.Running).To(BeFalse())
		Expect(snap.Outcome).To(Equal(parallel.OutcomeCanceled))
		Expect(snap.Lanes.Done()).To(BeFalse())
	})

	It("ends the run when the parent context is canceled", func() {
		sim, err := parallel.New(slowSerial(5 * time.Second))
		Expect(err).NotTo(HaveOccurred())

		runCtx, cancel := context.WithCancel(ctx)
		Expect(sim.Start(runCtx)).To(BeTrue())
		cancel()

		Eventually(sim.Done(), time.Second).Should(BeClosed())
		Expect(sim.Snapshot().Outcome).To(Equal(parallel.OutcomeCanceled))
	})
})
