package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gpunexus/internal/explain"
	"github.com/san-kum/gpunexus/internal/gpu"
	"github.com/san-kum/gpunexus/internal/nav"
	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/viz"
)

const (
	startLabel = "开始模拟"
	busyLabel  = "处理中..."
	inputHint  = "询问关于着色器、CUDA 或渲染的问题..."
)

func (m model) View() string {
	mainWidth := m.width
	if m.session.Open() {
		mainWidth -= panelWidth
	}
	mainWidth = max(mainWidth, 40)

	var b strings.Builder
	b.WriteString(m.viewHeader(mainWidth))
	b.WriteString("\n")

	v := m.nav.View()
	b.WriteString(m.styles.Title.Render(v.Title()) + "\n")
	b.WriteString(m.styles.Subtitle.Render(v.Subtitle()) + "\n\n")

	switch v {
	case nav.ViewArchitecture:
		b.WriteString(m.viewArchitecture(mainWidth))
	case nav.ViewPipeline:
		b.WriteString(m.viewPipeline(mainWidth))
	case nav.ViewParallelism:
		b.WriteString(m.viewParallelism(mainWidth))
	}
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	main := lipgloss.NewStyle().Width(mainWidth).Render(b.String())
	if !m.session.Open() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, m.viewPanel())
}

func (m model) viewHeader(width int) string {
	s := m.styles
	logo := viz.GradientText("GPU NEXUS", s.Theme.Primary, s.Theme.Secondary)

	tabs := make([]string, 0, 3)
	for i, v := range nav.Views() {
		label := fmt.Sprintf("%d %s", i+1, v.Label())
		if v == m.nav.View() {
			tabs = append(tabs, s.TabOn.Render(label))
		} else {
			tabs = append(tabs, s.Tab.Render(label))
		}
	}
	return logo + "  " + strings.Join(tabs, "") + "\n" + s.Separator(width-2)
}

func (m model) viewArchitecture(width int) string {
	s := m.styles
	inner := width - 4

	var b strings.Builder
	b.WriteString(s.Subtle.Render("芯片布局") + "\n")
	for r, row := range m.rows {
		blocks := make([]string, 0, len(row))
		for c, comp := range row {
			w := max(comp.Span*inner/12-2, 6)
			style := s.Block
			if r == m.row && c == m.col {
				style = s.Selected
			}
			blocks = append(blocks, style.Width(w).Render(comp.Name))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...) + "\n")
	}

	cur := m.component()
	b.WriteString("\n" + s.Accent.Render(cur.Name) + "  " + s.Text.Render(cur.Details) + "\n")
	b.WriteString(s.KeyHint.Render("提示：选中任意架构模块并按 enter，让 AI 助手为您深入讲解。") + "\n\n")

	cards := make([]string, 0, 3)
	cardWidth := max(inner/3-2, 12)
	for _, f := range gpu.Facts() {
		cards = append(cards, s.Panel.Width(cardWidth).Render(s.Title.Render(f.Title)+"\n"+s.Text.Render(f.Body)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	return b.String()
}

func (m model) viewPipeline(width int) string {
	s := m.styles
	stages := m.pipe.Stages()
	active := m.pipe.Active()
	w := max((width-4)/len(stages)-4, 8)

	boxes := make([]string, 0, 2*len(stages))
	for i, st := range stages {
		style := s.Block
		switch {
		case i == m.stage:
			style = s.Selected
		case i == active:
			style = s.Block.BorderForeground(s.Theme.Primary)
		}
		label := st.Icon + " " + st.Name
		if i == active {
			label = s.Active.Render(label)
		}
		boxes = append(boxes, style.Width(w).Render(label))
		if i < len(stages)-1 {
			boxes = append(boxes, s.Subtle.Render("\n → "))
		}
	}

	var b strings.Builder
	b.WriteString(s.Subtle.Render("图形渲染管线") + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...) + "\n\n")

	status := s.Warning.Render("⏸ 已暂停")
	if m.pipe.Running() {
		status = s.Running.Render("▶ 自动播放")
	}
	b.WriteString(status + "\n\n")

	cur := m.pipe.ActiveStage()
	b.WriteString(s.Subtle.Render("当前操作: ") + s.Accent.Render(cur.Name) + "\n")
	b.WriteString(s.Text.Render(cur.Description) + "\n")
	return b.String()
}

func (m model) viewParallelism(width int) string {
	s := m.styles
	snap := m.sim.Snapshot()
	colWidth := max((width-6)/2, 24)

	var cpu strings.Builder
	cpu.WriteString(s.Title.Render("CPU (低延迟优化)") + "\n")
	cpu.WriteString(s.Subtle.Render("1 核心") + "\n\n")
	cpu.WriteString(s.ProgressBar(snap.Serial.Progress/parallel.MaxProgress, colWidth-8) + " " + viz.Percent(snap.Serial.Progress) + "\n")
	cpu.WriteString(s.Text.Render(fmt.Sprintf("已完成 %d/%d", snap.Serial.Completed, snap.Serial.Quota)) + "\n")
	if snap.Running && !snap.Serial.Done() {
		cpu.WriteString(s.Subtle.Render("正在按顺序处理任务...") + "\n")
	}

	var gpuCol strings.Builder
	gpuCol.WriteString(s.Title.Render("GPU (高吞吐量优化)") + "\n")
	gpuCol.WriteString(s.Subtle.Render(fmt.Sprintf("%d 核心", len(snap.Lanes))) + "\n\n")
	gpuCol.WriteString(m.viewLanes(snap.Lanes) + "\n")
	if snap.Running && !snap.Lanes.Done() {
		gpuCol.WriteString(s.Subtle.Render(fmt.Sprintf("%d 个任务同时处理中", len(snap.Lanes))) + "\n")
	}

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Panel.Width(colWidth).Render(cpu.String()),
		s.Panel.Width(colWidth).Render(gpuCol.String()),
	)

	var b strings.Builder
	b.WriteString(s.Subtle.Render("串行执行 vs 大规模并行") + "\n")
	b.WriteString(cols + "\n")

	if snap.Running {
		b.WriteString(s.Warning.Render(viz.Spinner(m.frame)+" "+busyLabel) + "  " + s.Subtle.Render(formatDuration(snap.Elapsed)) + "\n")
	} else {
		b.WriteString(s.Running.Render("[ "+startLabel+" ]") + s.KeyHint.Render("  按 s 开始") + "\n")
	}
	if snap.Outcome != parallel.OutcomeNone {
		b.WriteString(s.Text.Render(summary(snap)) + "\n")
	}

	if len(m.serialHist) > 1 {
		c := viz.NewCanvas(max(width-6, 10), 4)
		c.Plot(m.serialHist, parallel.MaxProgress)
		c.Plot(m.parallelHist, parallel.MaxProgress)
		b.WriteString(s.Accent.Render(c.String()) + "\n")
		b.WriteString(s.Subtle.Render("完成度随时间变化 (串行 与 并行)") + "\n")
	}
	return b.String()
}

// viewLanes draws the lanes as a square-ish grid of shaded cells.
func (m model) viewLanes(lanes parallel.ParallelTaskSet) string {
	perRow := 16
	if len(lanes) <= 16 {
		perRow = 8
	}
	var b strings.Builder
	for i, v := range lanes {
		cell := viz.Sparkline([]float64{v}, parallel.MaxProgress)
		if v >= parallel.MaxProgress {
			b.WriteString(m.styles.Running.Render(cell))
		} else {
			b.WriteString(m.styles.Accent.Render(cell))
		}
		if (i+1)%perRow == 0 && i < len(lanes)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func summary(snap parallel.Snapshot) string {
	return fmt.Sprintf("结果: %s · 串行 %s · 并行 %s",
		snap.Outcome, doneAt(snap.SerialDoneAt), doneAt(snap.ParallelDoneAt))
}

func doneAt(d time.Duration) string {
	if d == 0 {
		return "未完成"
	}
	return formatDuration(d)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func (m model) viewPanel() string {
	s := m.styles
	inner := panelWidth - 4
	height := max(m.height-2, 10)

	status := s.Running.Render("● 在线")
	if !m.requester.Configured() {
		status = s.Error.Render("● 未配置 API Key")
	}
	header := s.Title.Render("Gemini GPU 助手") + " " + status

	var lines []string
	for _, msg := range m.session.Messages() {
		who := s.Bot.Render("GPU-GPT")
		if msg.Role == explain.RoleUser {
			who = s.User.Render("你")
		}
		text := msg.Text
		if msg.Pending {
			text = viz.Spinner(m.frame) + " " + text
		}
		body := lipgloss.NewStyle().Width(inner).Render(s.Text.Render(text))
		lines = append(lines, who)
		lines = append(lines, strings.Split(body, "\n")...)
		lines = append(lines, "")
	}

	input := s.Subtle.Render(inputHint)
	if m.typing || len(m.input) > 0 {
		cursor := ""
		if m.typing {
			cursor = "▌"
		}
		input = s.Text.Render(string(m.input)) + s.Accent.Render(cursor)
	}
	if m.session.Loading() {
		input = s.Subtle.Render(viz.Spinner(m.frame) + " 思考中...")
	}

	avail := max(height-5, 1)
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}
	body := header + "\n" + strings.Join(lines, "\n") + "\n" + s.Separator(inner) + "\n› " + input
	return s.Panel.Width(panelWidth - 2).Height(height).Render(body)
}

func (m model) viewFooter() string {
	hints := "tab 切换视图 · ↑↓←→ 移动 · enter 选择 · c 助手 · i 提问 · t 主题 · q 退出"
	switch m.nav.View() {
	case nav.ViewPipeline:
		hints = "space 播放/暂停 · r 重置 · " + hints
	case nav.ViewParallelism:
		hints = "s 开始模拟 · " + hints
	}
	if m.typing {
		hints = "enter 发送 · esc 返回"
	}
	return m.styles.KeyHint.Render(hints)
}
