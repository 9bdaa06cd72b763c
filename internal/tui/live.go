package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/viz"
)

const (
	barWidth    = 48
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws simulator snapshots to a plain terminal. It is a
// parallel.Observer; frames beyond frameRate per second are dropped, but the
// final snapshot of a run is always drawn.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{out: out, frameRate: frameRate}
}

func (r *LiveRenderer) OnTick(s parallel.Snapshot) {
	if s.Running && time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	fmt.Fprint(r.out, clearScreen+Frame(s))
}

// Frame renders one snapshot without styling.
func Frame(s parallel.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  run %s  t=%s  %s\n", s.RunID, formatDuration(s.Elapsed), s.Outcome)
	b.WriteString("  " + strings.Repeat("-", barWidth+16) + "\n")

	fmt.Fprintf(&b, "  CPU  %s %s  %d/%d\n",
		viz.ProgressBar(s.Serial.Progress/parallel.MaxProgress, barWidth),
		viz.Percent(s.Serial.Progress), s.Serial.Completed, s.Serial.Quota)
	fmt.Fprintf(&b, "  GPU  %s %s  %d/%d\n",
		viz.ProgressBar(s.Lanes.Fraction(), barWidth),
		viz.Percent(100*s.Lanes.Fraction()), s.Lanes.Finished(), len(s.Lanes))

	for i := 0; i < len(s.Lanes); i += barWidth {
		end := min(i+barWidth, len(s.Lanes))
		b.WriteString("       " + viz.Sparkline(s.Lanes[i:end], parallel.MaxProgress) + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", barWidth+16) + "\n")
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
