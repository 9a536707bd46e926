package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/tiltbox/internal/config"
	"github.com/san-kum/tiltbox/internal/sim"
)

var (
	menuTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuPick  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Menu lists the physics presets and starts a live view on enter. Arena
// size, live and audio settings come from the base config.
type Menu struct {
	base    *config.Config
	opts    []sim.Option
	presets []string
	cursor  int
	live    *Model
	err     error
}

func NewMenu(base *config.Config, opts ...sim.Option) Menu {
	return Menu{base: base, opts: opts, presets: config.ListPresets()}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		return m.start()
	}
	return m, nil
}

func (m Menu) start() (tea.Model, tea.Cmd) {
	cfg := config.GetPreset(m.presets[m.cursor])
	eng, err := sim.New(cfg.Physics, m.base.Size, m.opts...)
	if err != nil {
		m.err = err
		return m, nil
	}
	live := NewModel(eng, m.base.Live)
	m.live, m.err = &live, nil
	return m, live.Init()
}

// Selected is the preset under the cursor.
func (m Menu) Selected() string { return m.presets[m.cursor] }

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("TILTBOX") + "\n    " + menuSub.Render("tilt the box, trap the bodies") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		p := config.Presets[name].Physics
		desc := fmt.Sprintf("%s  friction %.3f  bounce %.2f", p.Variant, p.Friction, p.BounceEfficiency)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuTitle.Render("▸"), menuPick.Render(fmt.Sprintf("%-10s", name)), menuSub.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuDim.Render(fmt.Sprintf("%-10s", name)), menuDim.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + menuErr.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuDim.Render(" navigate  ") + menuKey.Render("enter") + menuDim.Render(" play  ") + menuKey.Render("esc") + menuDim.Render(" back  ") + menuKey.Render("q") + menuDim.Render(" quit") + "\n")
	return b.String()
}

// Run starts a full-screen program for m.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
