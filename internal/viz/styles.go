package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from one Theme.
type Styles struct {
	Theme    Theme
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Subtle   lipgloss.Style
	Accent   lipgloss.Style
	Panel    lipgloss.Style
	Block    lipgloss.Style
	Selected lipgloss.Style
	Active   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	KeyHint  lipgloss.Style
	Running  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	User     lipgloss.Style
	Bot      lipgloss.Style
	BarFull  lipgloss.Style
	BarEmpty lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme:    t,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Subtitle: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Text:     lipgloss.NewStyle().Foreground(t.Text),
		Subtle:   lipgloss.NewStyle().Foreground(t.Muted),
		Accent:   lipgloss.NewStyle().Foreground(t.Accent),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		Block: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Border).
			Foreground(t.Text).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(t.Primary).
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Reverse(true).Padding(0, 1),
		Tab:      lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 2),
		TabOn:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Underline(true).Padding(0, 2),
		KeyHint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Running:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warning:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Error:    lipgloss.NewStyle().Foreground(t.Error),
		User:     lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Bot:      lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		BarFull:  lipgloss.NewStyle().Foreground(t.Primary),
		BarEmpty: lipgloss.NewStyle().Foreground(t.Border),
	}
}

// ProgressBar renders fraction (0..1) as a width-cell bar.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled, empty := barCells(fraction, width)
	return s.BarFull.Render(strings.Repeat("█", filled)) +
		s.BarEmpty.Render(strings.Repeat("░", empty))
}

// ProgressBar is the unstyled bar used by plain output.
func ProgressBar(fraction float64, width int) string {
	filled, empty := barCells(fraction, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", empty)
}

// barCells splits width into filled and empty cells. A negative width is an
// empty bar.
func barCells(fraction float64, width int) (filled, empty int) {
	width = max(width, 0)
	filled = min(max(int(fraction*float64(width)), 0), width)
	return filled, width - filled
}

// Percent formats a 0..100 value.
func Percent(v float64) string { return fmt.Sprintf("%3.0f%%", v) }

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func Spinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one character per value on a fixed 0..max scale.
func Sparkline(values []float64, max float64) string {
	if max <= 0 {
		max = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(sparkChars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Subtle.Render(strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1))
}

// GradientText colors each rune of text along a line from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(start))
	er, eg, eb := parseHex(string(end))

	var b strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		color := fmt.Sprintf("#%02x%02x%02x",
			lerp(sr, er, t), lerp(sg, eg, t), lerp(sb, eb, t))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(c)))
	}
	return b.String()
}

func lerp(a, b int, t float64) int {
	return int(float64(a) + t*float64(b-a))
}

func parseHex(hex string) (r, g, b int) {
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 255, 255, 255
	}
	return r, g, b
}

// Next returns the styles of the theme after this one.
func (s Styles) Next() Styles { return NewStyles(NextTheme(s.Theme.Name)) }
