package viz

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/tiltbox/internal/config"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 30
	panelWidth      = 46
	historyCapacity = 300
	logCapacity     = 6
	// tilt relaxes toward level each tick; key repeat keeps it up.
	tiltDecay  = 0.9
	resizeStep = 1.1
	minArena   = 100.0
)

type TickMsg time.Time

// Model is the live view of one engine. It steps the engine on every TickMsg
// with the current tilt plus the rest gravity as the force.
type Model struct {
	eng      *sim.Engine
	cfg      config.LiveConfig
	tilt     dynamo.Vec2
	running  bool
	showHelp bool
	theme    Theme
	canvas   *Canvas
	last     sim.TickResult
	speeds   []float64
	log      []string
}

func NewModel(eng *sim.Engine, cfg config.LiveConfig) Model {
	if cfg.FPS <= 0 {
		cfg.FPS = config.DefaultFPS
	}
	if cfg.TiltStep <= 0 {
		cfg.TiltStep = config.DefaultTiltStep
	}
	m := Model{
		eng:     eng,
		cfg:     cfg,
		running: true,
		theme:   GetTheme(cfg.Theme),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		speeds:  make([]float64, 0, historyCapacity),
	}
	m.syncLast()
	return m
}

// KeyTilt maps a key to a unit tilt direction.
func KeyTilt(key string) (dynamo.Vec2, bool) {
	switch key {
	case "left", "h":
		return dynamo.Vec2{X: -1}, true
	case "right", "l":
		return dynamo.Vec2{X: 1}, true
	case "up", "k":
		return dynamo.Vec2{Y: -1}, true
	case "down", "j":
		return dynamo.Vec2{Y: 1}, true
	}
	return dynamo.Vec2{}, false
}

// Input is the force for the next tick.
func (m Model) Input() dynamo.Input {
	in := dynamo.RestInput(m.eng.Params())
	in.Force = in.Force.Add(m.tilt)
	return in
}

func (m Model) Tilt() dynamo.Vec2 { return m.tilt }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if dir, ok := KeyTilt(key); ok {
			m.nudge(dir)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "c":
			m.tilt = dynamo.Vec2{}
		case "r":
			m.eng.Reset()
			m.clearHistory()
		case "+", "=":
			m.resize(m.arenaSize() * resizeStep)
		case "-", "_":
			m.resize(m.arenaSize() / resizeStep)
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.fit(msg.Width, msg.Height)
	case TickMsg:
		if m.running && !m.eng.Won() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) nudge(dir dynamo.Vec2) {
	limit := m.cfg.MaxTilt
	if limit <= 0 {
		limit = math.Inf(1)
	}
	t := m.tilt.Add(dir.Scale(m.cfg.TiltStep))
	m.tilt = dynamo.Vec2{
		X: math.Max(-limit, math.Min(limit, t.X)),
		Y: math.Max(-limit, math.Min(limit, t.Y)),
	}
}

// step advances the engine one tick and records history.
func (m *Model) step() {
	res := m.eng.Tick(m.Input())
	m.last = res
	m.tilt = m.tilt.Scale(tiltDecay)

	mean := 0.0
	for _, b := range res.Bodies {
		mean += b.Speed()
	}
	if len(res.Bodies) > 0 {
		mean /= float64(len(res.Bodies))
	}
	m.speeds = append(m.speeds, mean)
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}

	for _, ev := range res.Events {
		m.log = append(m.log, fmt.Sprintf("%5d %s", res.Tick, ev))
	}
	if len(m.log) > logCapacity {
		m.log = m.log[len(m.log)-logCapacity:]
	}
}

func (m *Model) resize(size float64) {
	if size < minArena {
		size = minArena
	}
	if err := m.eng.Resize(size); err != nil {
		m.log = append(m.log, "resize: "+err.Error())
		return
	}
	m.clearHistory()
}

func (m *Model) clearHistory() {
	m.tilt = dynamo.Vec2{}
	m.speeds = m.speeds[:0]
	m.log = m.log[:0]
	m.syncLast()
}

// syncLast fills last from the engine without ticking it.
func (m *Model) syncLast() {
	st := m.eng.State()
	m.last = sim.TickResult{
		Tick:     st.Tick,
		Bodies:   st.Bodies,
		Captures: st.Captures,
		Index:    st.Index,
		Won:      st.Won,
	}
}

// fit sizes the canvas to the largest square that leaves room for the panel.
func (m *Model) fit(w, h int) {
	dots := min((w-panelWidth)*2, (h-2)*4)
	dots = max(dots, 40)
	m.canvas = NewCanvas(dots/2, dots/4)
}

func (m Model) arenaSize() float64 { return m.eng.State().Arena.Size }
