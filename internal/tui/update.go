package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gpunexus/internal/gpu"
	"github.com/san-kum/gpunexus/internal/nav"
)

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.frame++
		m.record()
		return m, tick()
	case explainMsg:
		if !m.session.Resolve(msg.id, msg.text) {
			m.logger.Warningf("no pending placeholder %s", msg.id)
		}
		return m, nil
	case replyMsg:
		m.session.Reply(msg.text)
		return m, nil
	}
	return m, nil
}

// record samples the simulator for the completion plot.
func (m *model) record() {
	snap := m.sim.Snapshot()
	if snap.RunID == "" {
		return
	}
	if snap.RunID != m.runID {
		m.runID = snap.RunID
		m.serialHist = m.serialHist[:0]
		m.parallelHist = m.parallelHist[:0]
	}
	if !snap.Running && len(m.serialHist) > 0 {
		last := len(m.serialHist) - 1
		if m.serialHist[last] == 100*snap.Serial.Fraction() && m.parallelHist[last] == 100*snap.Lanes.Fraction() {
			return
		}
	}
	m.serialHist = appendCapped(m.serialHist, 100*snap.Serial.Fraction())
	m.parallelHist = appendCapped(m.parallelHist, 100*snap.Lanes.Fraction())
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyLen {
		s = s[len(s)-historyLen:]
	}
	return s
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.typing {
		return m.inputKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.nav.Next()
		return m, nil
	case "shift+tab":
		m.nav.Prev()
		return m, nil
	case "1", "2", "3":
		m.nav.SetView(nav.View(msg.String()[0] - '1'))
		return m, nil
	case "c":
		m.session.Toggle()
		return m, nil
	case "i":
		if !m.session.Open() {
			m.session.Toggle()
		}
		m.typing = true
		return m, nil
	case "t":
		m.styles = m.styles.Next()
		return m, nil
	}

	switch m.nav.View() {
	case nav.ViewArchitecture:
		return m.architectureKey(msg)
	case nav.ViewPipeline:
		return m.pipelineKey(msg)
	case nav.ViewParallelism:
		return m.parallelismKey(msg)
	}
	return m, nil
}

func (m model) architectureKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.row > 0 {
			m.row--
			m.col = min(m.col, len(m.rows[m.row])-1)
		}
	case "down", "j":
		if m.row < len(m.rows)-1 {
			m.row++
			m.col = min(m.col, len(m.rows[m.row])-1)
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < len(m.rows[m.row])-1 {
			m.col++
		}
	case "enter":
		return m, m.explain(m.component().Topic())
	}
	return m, nil
}

func (m model) component() gpu.Component { return m.rows[m.row][m.col] }

func (m model) pipelineKey(msg tea.KeyMsg) (model, tea.Cmd) {
	stages := m.pipe.Stages()
	switch msg.String() {
	case "left", "h", "up", "k":
		if m.stage > 0 {
			m.stage--
		}
	case "right", "l", "down", "j":
		if m.stage < len(stages)-1 {
			m.stage++
		}
	case " ":
		m.pipe.Toggle(m.ctx)
	case "r":
		m.pipe.Reset()
		m.stage = 0
	case "enter":
		stage, err := m.pipe.Select(m.stage)
		if err != nil {
			m.logger.Errorf("could not select stage %d: %v", m.stage, err)
			return m, nil
		}
		return m, m.explain(stage.Topic())
	}
	return m, nil
}

func (m model) parallelismKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "s", "enter":
		if !m.sim.Start(m.ctx) {
			m.logger.Debugf("simulation already running")
		}
	}
	return m, nil
}

func (m model) inputKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.typing = false
	case tea.KeyEnter:
		return m.send()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

// explain records the selection and returns the single request for it.
func (m model) explain(t gpu.Topic) tea.Cmd {
	req := m.nav.Select(t)
	id := m.session.BeginExplain(req.Topic.Name)
	m.logger.Debugf("request %d for %q", req.Seq, req.Topic.Name)

	ctx, requester := m.ctx, m.requester
	return func() tea.Msg {
		return explainMsg{id: id, text: requester.ExplainTopic(ctx, req.Topic.Name, req.Topic.Description)}
	}
}

func (m model) send() (model, tea.Cmd) {
	if m.session.Loading() {
		return m, nil
	}
	text := strings.TrimSpace(string(m.input))
	history, ok := m.session.BeginAsk(text)
	if !ok {
		return m, nil
	}
	m.input = nil

	ctx, requester := m.ctx, m.requester
	return m, func() tea.Msg {
		return replyMsg{text: requester.Converse(ctx, text, history)}
	}
}
