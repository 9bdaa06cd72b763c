package compute_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gpunexus/internal/compute"
)

var _ = Describe("Backends", func() {
	small := compute.Workload{Tasks: 9, Size: 16, Rounds: 2}

	It("produce the same checksum serially and in parallel", func() {
		serial, err := compute.NewSerialBackend().Run(context.Background(), small)
		Expect(err).NotTo(HaveOccurred())

		for _, workers := range []int{1, 2, 4, 16} {
			par, err := compute.NewCPUBackend(workers).Run(context.Background(), small)
			Expect(err).NotTo(HaveOccurred())
			Expect(par.Checksum).To(Equal(serial.Checksum))
		}
	})

	It("caps workers at the task count", func() {
		res, err := compute.NewCPUBackend(32).Run(context.Background(), small)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Workers).To(Equal(9))
		Expect(res.Backend).To(Equal("parallel"))
	})

	It("records a completion offset for every task", func() {
		res, err := compute.NewSerialBackend().Run(context.Background(), small)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Finished).To(HaveLen(9))
		for i := 1; i < len(res.Finished); i++ {
			Expect(res.Finished[i]).To(BeNumerically(">=", res.Finished[i-1]))
		}
		Expect(res.Elapsed).To(BeNumerically(">=", res.Finished[8]))
	})

	It("defaults to one worker per CPU", func() {
		Expect(compute.NewCPUBackend(0).Workers()).To(BeNumerically(">", 0))
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := compute.NewSerialBackend().Run(ctx, small)
		Expect(err).To(MatchError(context.Canceled))
		_, err = compute.NewCPUBackend(2).Run(ctx, small)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects an empty workload", func() {
		_, err := compute.NewSerialBackend().Run(context.Background(), compute.Workload{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Result", func() {
	res := compute.Result{
		Elapsed:  4 * time.Second,
		Finished: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
	}

	It("samples the completed percentage", func() {
		Expect(res.Timeline(4*time.Second, 5)).To(Equal([]float64{0, 25, 50, 75, 100}))
	})

	It("reports throughput", func() {
		Expect(res.Throughput()).To(BeNumerically("~", 1.0, 1e-9))
	})
})
