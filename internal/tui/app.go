// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"

	"github.com/san-kum/gpunexus/internal/assistant"
	"github.com/san-kum/gpunexus/internal/explain"
	"github.com/san-kum/gpunexus/internal/gpu"
	"github.com/san-kum/gpunexus/internal/log"
	"github.com/san-kum/gpunexus/internal/nav"
	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/pipeline"
	"github.com/san-kum/gpunexus/internal/viz"
)

const (
	frameInterval = 33 * time.Millisecond
	historyLen    = 240
	panelWidth    = 46
)

type Deps struct {
	Simulator *parallel.Simulator
	Pipeline  *pipeline.Pipeline
	Requester *explain.Requester
	Session   *assistant.Session
	Theme     string
	Logger    log.Logger
}

func (d *Deps) defaults() error {
	if d.Simulator == nil {
		return fmt.Errorf("simulator is required")
	}
	if d.Pipeline == nil {
		return fmt.Errorf("pipeline is required")
	}
	if d.Requester == nil {
		return fmt.Errorf("requester is required")
	}
	if d.Session == nil {
		d.Session = assistant.NewSession()
	}
	if d.Logger == nil {
		d.Logger = log.Noop
	}
	d.Logger = d.Logger.WithValues(log.Kv{"component": "tui"})
	return nil
}

type model struct {
	ctx       context.Context
	nav       *nav.Controller
	sim       *parallel.Simulator
	pipe      *pipeline.Pipeline
	requester *explain.Requester
	session   *assistant.Session
	logger    log.Logger
	styles    viz.Styles

	rows     [][]gpu.Component
	row, col int
	stage    int

	typing bool
	input  []rune

	runID        string
	serialHist   []float64
	parallelHist []float64

	frame  int
	width  int
	height int
}

func newModel(ctx context.Context, d Deps) (model, error) {
	if err := d.defaults(); err != nil {
		return model{}, fmt.Errorf("invalid deps: %w", err)
	}
	theme, ok := viz.GetTheme(d.Theme)
	if !ok && d.Theme != "" {
		d.Logger.Warningf("unknown theme %q, using %s", d.Theme, theme.Name)
	}
	return model{
		ctx:       ctx,
		nav:       nav.New(),
		sim:       d.Simulator,
		pipe:      d.Pipeline,
		requester: d.Requester,
		session:   d.Session,
		logger:    d.Logger,
		styles:    viz.NewStyles(theme),
		rows:      gpu.Rows(),
		width:     120,
		height:    36,
	}, nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type explainMsg struct {
	id   ulid.ULID
	text string
}

type replyMsg struct {
	text string
}

// Run blocks until the user quits or ctx ends. The pipeline timer and any
// simulation run are released before it returns.
func Run(ctx context.Context, d Deps) error {
	m, err := newModel(ctx, d)
	if err != nil {
		return err
	}
	defer m.sim.Stop()
	defer m.pipe.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
