package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tiltbox/internal/goal"
	"github.com/san-kum/tiltbox/internal/physics"
)

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Arrows/HJKL - Tilt the box          ║
║  C           - Level the box         ║
║  Space       - Pause/Resume          ║
║  R           - Reset bodies          ║
║  +/-         - Resize arena (resets) ║
║  T           - Cycle themes          ║
║  ?           - Toggle this help      ║
║  Q           - Quit                  ║
╚══════════════════════════════════════╝
`

// viewport maps arena coordinates onto canvas dots.
type viewport struct {
	scale float64
}

func newViewport(c *Canvas, size float64) viewport {
	w, h := c.Dots()
	return viewport{scale: float64(min(w, h)-1) / size}
}

func (v viewport) pt(x, y float64) (int, int) {
	return int(math.Round(x * v.scale)), int(math.Round(y * v.scale))
}

func (v viewport) dist(d float64) int { return int(math.Round(d * v.scale)) }

// draw renders walls, zones and bodies of the current engine state.
func (m *Model) draw() {
	st := m.eng.State()
	m.canvas.Clear()
	vp := newViewport(m.canvas, st.Arena.Size)

	for q := 0; q < physics.NumQuadrants; q++ {
		b, _ := st.Arena.QuadrantBounds(q)
		x0, y0 := vp.pt(b.MinX, b.MinY)
		x1, y1 := vp.pt(b.MaxX, b.MaxY)
		m.canvas.DrawRect(x0, y0, x1, y1)
	}

	for _, z := range st.Zones {
		cx, cy := vp.pt(z.Position.X, z.Position.Y)
		m.canvas.DrawCircle(cx, cy, vp.dist(st.Arena.StickyRadius))
		if z.IsTarget {
			m.canvas.DrawCircle(cx, cy, vp.dist(st.Arena.CaptureRadius))
		}
	}

	for _, b := range st.Bodies {
		cx, cy := vp.pt(b.Position.X, b.Position.Y)
		m.canvas.FillCircle(cx, cy, max(vp.dist(b.Radius), 1))
	}
}

func (m Model) status(sty styles) string {
	switch {
	case m.last.Won:
		return sty.success.Render(fmt.Sprintf("WON at tick %d", m.last.Tick))
	case !m.running:
		return sty.warning.Render("PAUSED")
	}
	return sty.value.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	sty := stylesFor(m.theme)
	st := m.eng.State()

	var s strings.Builder
	s.WriteString(sty.header.Render("TILTBOX") + "\n")
	s.WriteString(m.status(sty) + "\n\n")

	captured := goal.Progress(m.last.Captures)
	required := m.eng.RequiredZones()
	row := func(label, value string) {
		s.WriteString(sty.label.Render(label) + sty.value.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.last.Tick))
	row("Variant", string(m.eng.Params().Variant))
	row("Arena", fmt.Sprintf("%.0f", st.Arena.Size))
	row("Tilt", fmt.Sprintf("%+.2f %+.2f", m.tilt.X, m.tilt.Y))
	s.WriteString(sty.label.Render("Captured") + ProgressBar(captured, required, 12, m.theme) +
		sty.value.Render(fmt.Sprintf(" %d/%d", captured, required)) + "\n")

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("mean speed"))
		s.WriteString("\n" + sty.muted.Render(chart) + "\n")
	}

	s.WriteString("\nEVENTS\n")
	if len(m.log) == 0 {
		s.WriteString(sty.muted.Render("  (none)") + "\n")
	}
	for _, line := range m.log {
		s.WriteString(sty.muted.Render(line) + "\n")
	}
	s.WriteString(sty.muted.Render("\n─────────────────────\n←↑↓→:Tilt SP:Pause R:Reset\nT:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		sty.canvas.Render(m.canvas.String()),
		sty.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}
