// Package nav holds the view controller: which screen is visible and which
// topic was picked last for explanation.
package nav

import "github.com/san-kum/gpunexus/internal/gpu"

type View int

const (
	ViewArchitecture View = iota
	ViewPipeline
	ViewParallelism
)

var views = []View{ViewArchitecture, ViewPipeline, ViewParallelism}

// Views returns every view in tab order.
func Views() []View { return append([]View(nil), views...) }

// Label is the short tab label.
func (v View) Label() string {
	switch v {
	case ViewArchitecture:
		return "架构图解"
	case ViewPipeline:
		return "渲染管线"
	case ViewParallelism:
		return "运行模拟"
	}
	return ""
}

func (v View) Title() string {
	switch v {
	case ViewArchitecture:
		return "内部架构"
	case ViewPipeline:
		return "渲染管线"
	case ViewParallelism:
		return "并行处理逻辑"
	}
	return ""
}

func (v View) Subtitle() string {
	switch v {
	case ViewArchitecture:
		return "探索现代 GPU 的物理布局。选中模块，了解它们在大规模并行机器中的功能。"
	case ViewPipeline:
		return "跟踪从 3D 几何体到屏幕上 2D 像素的数据流。"
	case ViewParallelism:
		return "可视化为什么 GPU 在图形和 AI 负载上比 CPU 更快。"
	}
	return ""
}

func (v View) String() string {
	switch v {
	case ViewArchitecture:
		return "architecture"
	case ViewPipeline:
		return "pipeline"
	case ViewParallelism:
		return "parallelism"
	}
	return "unknown"
}

// Request is one explanation request produced by a selection.
type Request struct {
	Seq   int
	Topic gpu.Topic
}

type Controller struct {
	view  View
	topic *gpu.Topic
	seq   int
}

func New() *Controller {
	return &Controller{view: ViewArchitecture}
}

func (c *Controller) View() View { return c.view }

func (c *Controller) SetView(v View) {
	if v < ViewArchitecture || v > ViewParallelism {
		return
	}
	c.view = v
}

func (c *Controller) Next() View {
	c.view = views[(int(c.view)+1)%len(views)]
	return c.view
}

func (c *Controller) Prev() View {
	c.view = views[(int(c.view)+len(views)-1)%len(views)]
	return c.view
}

// Select records t as the current topic, replacing any previous one, and
// returns the request to hand to the explanation requester.
func (c *Controller) Select(t gpu.Topic) Request {
	c.seq++
	c.topic = &t
	return Request{Seq: c.seq, Topic: t}
}

// Topic returns the last selected topic.
func (c *Controller) Topic() (gpu.Topic, bool) {
	if c.topic == nil {
		return gpu.Topic{}, false
	}
	return *c.topic, true
}
