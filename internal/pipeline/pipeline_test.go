package pipeline_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gpunexus/internal/gpu"
	"github.com/san-kum/gpunexus/internal/pipeline"
)

var _ = Describe("Pipeline", func() {
	var p *pipeline.Pipeline

	BeforeEach(func() {
		p = pipeline.New(gpu.Stages(), 10*time.Millisecond)
	})

	AfterEach(func() {
		p.Close()
	})

	It("starts paused on the first stage", func() {
		Expect(p.Active()).To(Equal(0))
		Expect(p.Running()).To(BeFalse())
		Expect(p.ActiveStage().ID).To(Equal("vertex"))
	})

	It("wraps around after the last stage", func() {
		for i := 0; i < 4; i++ {
			p.Advance()
		}
		Expect(p.Active()).To(Equal(0))
	})

	It("advances on its own while playing", func() {
		p.Play(context.Background())
		Expect(p.Running()).To(BeTrue())
		Eventually(p.Active).Should(BeNumerically(">", 0))
	})

	It("stops advancing once paused", func() {
		p.Play(context.Background())
		Eventually(p.Active).ShouldNot(Equal(0))
		p.Pause()
		active := p.Active()
		Consistently(p.Active, 50*time.Millisecond).Should(Equal(active))
	})

	It("toggles between playing and paused", func() {
		Expect(p.Toggle(context.Background())).To(BeTrue())
		Expect(p.Running()).To(BeTrue())
		Expect(p.Toggle(context.Background())).To(BeFalse())
		Expect(p.Running()).To(BeFalse())
	})

	It("resets to the first stage and pauses", func() {
		p.Advance()
		p.Play(context.Background())
		p.Reset()
		Expect(p.Active()).To(Equal(0))
		Expect(p.Running()).To(BeFalse())
	})

	It("selecting the rasterization stage activates it and returns its description", func() {
		p.Play(context.Background())
		stage, err := p.Select(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(stage.Name).To(Equal("光栅化"))
		Expect(stage.Description).To(Equal("将矢量形状（三角形）转换为潜在的像素（片段）。"))
		Expect(p.Active()).To(Equal(1))
		Expect(p.Running()).To(BeFalse())
	})

	It("rejects out of range selections", func() {
		_, err := p.Select(4)
		Expect(errors.Is(err, pipeline.ErrStageOutOfRange)).To(BeTrue())
		_, err = p.Select(-1)
		Expect(errors.Is(err, pipeline.ErrStageOutOfRange)).To(BeTrue())
	})

	It("stops when the parent context ends", func() {
		ctx, cancel := context.WithCancel(context.Background())
		p.Play(ctx)
		cancel()
		Eventually(p.Running).Should(BeFalse())
	})
})
