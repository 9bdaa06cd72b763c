package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTopic   = errors.New("gpu: unknown topic")
	ErrAmbiguousTopic = errors.New("gpu: ambiguous topic name")
)

// Component is a clickable block of the chip layout.
type Component struct {
	ID      string
	Name    string
	Details string
	// Row and Span place the block on a 12-column grid.
	Row  int
	Span int
}

// IsSM reports whether the block is a streaming multiprocessor.
func (c Component) IsSM() bool { return strings.HasPrefix(c.ID, "sm-") }

// Stage is one step of the graphics rendering pipeline.
type Stage struct {
	ID          string
	Name        string
	Description string
	Icon        string
}

// Fact is an informational card.
type Fact struct {
	Title string
	Body  string
}

// Topic is anything that can be explained.
type Topic struct {
	ID          string
	Name        string
	Description string
}

var components = []Component{
	{ID: "host-interface", Name: "PCIe 接口", Details: "连接 GPU 与 CPU/主板的数据通道。", Row: 0, Span: 12},
	{ID: "command-processor", Name: "GigaThread 引擎", Details: "向流式多处理器 (SM) 分配工作块。", Row: 1, Span: 4},
	{ID: "l2-cache", Name: "L2 缓存", Details: "所有 SM 共享的高速内存。", Row: 1, Span: 8},
	{ID: "sm-1", Name: "流式多处理器 (SM)", Details: "GPU 的核心。包含 CUDA 核心、Tensor 核心和 RT 核心。", Row: 2, Span: 3},
	{ID: "sm-2", Name: "流式多处理器 (SM)", Details: "用于并行处理的额外 SM 模块。", Row: 2, Span: 3},
	{ID: "sm-3", Name: "流式多处理器 (SM)", Details: "用于并行处理的额外 SM 模块。", Row: 2, Span: 3},
	{ID: "sm-4", Name: "流式多处理器 (SM)", Details: "用于并行处理的额外 SM 模块。", Row: 2, Span: 3},
	{ID: "vram", Name: "显存 (VRAM GDDR6X)", Details: "高速全局视频内存，存储纹理和帧缓冲。", Row: 3, Span: 12},
}

var stages = []Stage{
	{ID: "vertex", Name: "输入装配与顶点着色器", Description: "读取顶点数据，并将其从 3D 对象空间变换为 2D 屏幕空间。", Icon: "△"},
	{ID: "raster", Name: "光栅化", Description: "将矢量形状（三角形）转换为潜在的像素（片段）。", Icon: "▦"},
	{ID: "fragment", Name: "片段着色器", Description: "根据纹理、光照和阴影计算每个像素的最终颜色。", Icon: "✎"},
	{ID: "output", Name: "输出合并", Description: "合并片段，处理深度测试 (Z-buffer)，并将结果写入帧缓冲区。", Icon: "▭"},
}

var facts = []Fact{
	{Title: "你知道吗？", Body: "现代 GPU 拥有数千个小核心，而 CPU 只有少数几个功能强大的核心。"},
	{Title: "AI Tensor 核心", Body: "专用硬件单元可以在一个时钟周期内执行 4x4 矩阵乘法。"},
	{Title: "SIMT 架构", Body: "单指令多线程。一条指令可以同时控制 32 个线程（一个 Warp）。"},
}

// Components returns the chip layout blocks in display order.
func Components() []Component {
	out := make([]Component, len(components))
	copy(out, components)
	return out
}

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Facts returns the fact cards.
func Facts() []Fact {
	out := make([]Fact, len(facts))
	copy(out, facts)
	return out
}

func (c Component) Topic() Topic { return Topic{ID: c.ID, Name: c.Name, Description: c.Details} }
func (s Stage) Topic() Topic     { return Topic{ID: s.ID, Name: s.Name, Description: s.Description} }

// Topics lists every explainable item, components first.
func Topics() []Topic {
	out := make([]Topic, 0, len(components)+len(stages))
	for _, c := range components {
		out = append(out, c.Topic())
	}
	for _, s := range stages {
		out = append(out, s.Topic())
	}
	return out
}

// Lookup finds a topic by id or by exact name. A name shared by several
// topics (the four SMs) only resolves by id.
func Lookup(key string) (Topic, error) {
	key = strings.TrimSpace(key)
	var named []Topic
	for _, t := range Topics() {
		if strings.EqualFold(t.ID, key) {
			return t, nil
		}
		if t.Name == key {
			named = append(named, t)
		}
	}
	switch len(named) {
	case 0:
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, key)
	case 1:
		return named[0], nil
	}
	ids := make([]string, 0, len(named))
	for _, t := range named {
		ids = append(ids, t.ID)
	}
	return Topic{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousTopic, key, strings.Join(ids, ", "))
}

// Rows groups the components by layout row.
func Rows() [][]Component {
	var rows [][]Component
	for _, c := range components {
		for len(rows) <= c.Row {
			rows = append(rows, nil)
		}
		rows[c.Row] = append(rows[c.Row], c)
	}
	return rows
}
