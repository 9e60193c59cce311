package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 600
	zoomStep        = 1.25

	// canvas offset inside the view: header with its border and the
	// caption above, one column of padding to the left
	canvasTop  = 3
	canvasLeft = 1
)

type TickMsg time.Time

// StepperFactory builds a fresh integrator by name.
type StepperFactory func(name string) (dynamo.Stepper, error)

type Options struct {
	Title string
	FPS   int
	// Scale is in pixels per simulation unit for a Width×Height window.
	Scale         float64
	Width, Height int
	// Integrators lists the names selectable with the number keys.
	Integrators []string
	Integrator  string
	NewStepper  StepperFactory
	Energy      dynamo.Hamiltonian
	TrailLength int
}

// Model drives a sim.Loop from bubbletea ticks. Each tick applies at most
// one step, so the frame rate throttles the simulation.
type Model struct {
	loop          *sim.Loop
	opts          Options
	scene         *scene
	theme         Theme
	styles        Styles
	frame         dynamo.Frame
	integrator    string
	drift         *metrics.EnergyDrift
	driftHistory  []float64
	width, height int
	fullscreen    bool
	showHelp      bool
	status        string
}

func NewModel(loop *sim.Loop, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	m := Model{
		loop:         loop,
		opts:         opts,
		scene:        newScene(defaultCols, defaultRows, opts.Scale, opts.Width, opts.Height, opts.TrailLength),
		theme:        ThemeDeepSpace,
		styles:       NewStyles(ThemeDeepSpace),
		integrator:   opts.Integrator,
		driftHistory: make([]float64, 0, historyCapacity),
		frame:        dynamo.Frame{Dt: loop.Dt(), Paused: loop.Paused()},
	}
	if opts.Energy != nil {
		m.drift = metrics.NewEnergyDrift(opts.Energy)
		m.drift.Observe(loop.Bodies(), loop.Time())
	}
	m.scene.record(loop.Bodies())
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.loop.TogglePause()
		case "f11", "f":
			m.fullscreen = !m.fullscreen
			if m.fullscreen {
				return m, tea.EnterAltScreen
			}
			return m, tea.ExitAltScreen
		case "+", "=":
			m.scene.zoom(zoomStep)
		case "-", "_":
			m.scene.zoom(1 / zoomStep)
		case "0":
			m.scene.resetView()
		case "c":
			m.scene.clearTrails()
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
			m.scene.background = string(m.theme.Background)
		case "?":
			m.showHelp = !m.showHelp
		default:
			if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
				m.switchIntegrator(int(k[0] - '1'))
			}
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.loop.TogglePause()
		case tea.MouseButtonRight:
			m.recenterAt(msg.X, msg.Y)
		}
	case tea.BlurMsg:
		m.loop.SetPaused(true)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols := msg.Width - panelWidth - 6
		rows := msg.Height - 4
		m.scene.resize(max(cols, 20), max(rows, 8))
	case TickMsg:
		if m.loop.Tick() {
			m.record()
		}
		m.frame = m.loop.Frame(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) switchIntegrator(i int) {
	if i < 0 || i >= len(m.opts.Integrators) || m.opts.NewStepper == nil {
		return
	}
	name := m.opts.Integrators[i]
	s, err := m.opts.NewStepper(name)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.loop.SetStepper(s)
	m.integrator = name
	m.status = "integrator: " + name
}

// record appends the current state to the trails and the drift history.
func (m *Model) record() {
	m.scene.record(m.loop.Bodies())

	if m.drift == nil {
		return
	}
	m.drift.Observe(m.loop.Bodies(), m.loop.Time())
	m.driftHistory = append(m.driftHistory, m.drift.Current())
	if len(m.driftHistory) > historyCapacity {
		m.driftHistory = m.driftHistory[1:]
	}
}

// recenterAt moves the view center to the point under terminal cell (x, y).
// Clicks outside the canvas are ignored.
func (m *Model) recenterAt(x, y int) {
	top := canvasTop
	if m.showHelp {
		top += strings.Count(helpText, "\n") + 1
	}
	col, row := x-canvasLeft, y-top
	if col < 0 || row < 0 || col >= m.scene.canvas.Width || row >= m.scene.canvas.Height {
		return
	}
	m.scene.recenter(col, row)
}

// Caption is the window title line: pause hint, time step and measured FPS.
func (m Model) Caption() string {
	return fmt.Sprintf("Pause: LMB/Space | Δt=%gs | FPS=%.0f", m.loop.Dt(), m.frame.FPS)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.scene.draw(m.loop.Bodies())

	title := m.opts.Title
	if title == "" {
		title = "orbitsim"
	}

	left := m.styles.Header.Render(strings.ToUpper(title)) + "\n" +
		m.styles.Caption.Render(m.Caption()) + "\n" +
		m.styles.Canvas.Render(m.scene.canvas.Render())

	var s strings.Builder
	if m.loop.Paused() {
		s.WriteString(m.styles.Paused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(m.styles.Running.Render("RUNNING") + "\n\n")
	}

	s.WriteString(m.metric("Time", FormatDuration(m.loop.Time())))
	s.WriteString(m.metric("Steps", fmt.Sprintf("%d", m.loop.Steps())))
	s.WriteString(m.metric("Bodies", fmt.Sprintf("%d", len(m.loop.Bodies()))))
	s.WriteString(m.metric("Zoom", fmt.Sprintf("%.2fx", m.scene.proj.Zoom)))
	if len(m.driftHistory) > 0 {
		s.WriteString(m.metric("ΔE/E₀", fmt.Sprintf("%.3e", m.driftHistory[len(m.driftHistory)-1])))
	}

	s.WriteString("\nINTEGRATOR\n")
	for i, name := range m.opts.Integrators {
		line := fmt.Sprintf("%d %s", i+1, name)
		if name == m.integrator {
			s.WriteString(m.styles.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.styles.MetricLabel.UnsetWidth().Render(line) + "\n")
		}
	}

	if len(m.driftHistory) > 1 {
		chart := asciigraph.Plot(m.driftHistory, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("energy drift"))
		s.WriteString("\n" + m.styles.Graph.Render(chart) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + m.styles.KeyHint.Render(m.status) + "\n")
	}
	s.WriteString("\n" + m.styles.KeyHint.Render("SP/LMB:Pause Esc:Quit F11:Full\n1-9:Integrator +/-:Zoom 0:Reset\nC:Clear T:Theme RMB:Center ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, m.styles.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) metric(label, value string) string {
	return m.styles.MetricLabel.Render(label) + m.styles.MetricValue.Render(value) + "\n"
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space/LMB - Pause/Resume            ║
║  Esc/Q     - Quit                    ║
║  F11/F     - Toggle full screen      ║
║  1-9       - Switch integrator       ║
║  +/-       - Zoom in/out             ║
║  0         - Reset view              ║
║  RMB       - Center on point         ║
║  C         - Clear trails            ║
║  T         - Cycle themes            ║
║  ?         - Toggle this help        ║
╚══════════════════════════════════════╝`

// FormatDuration prints simulated seconds in the largest fitting unit.
func FormatDuration(sec float64) string {
	a := math.Abs(sec)
	switch {
	case a >= 365.25*86400:
		return fmt.Sprintf("%.2f yr", sec/(365.25*86400))
	case a >= 86400:
		return fmt.Sprintf("%.1f d", sec/86400)
	case a >= 3600:
		return fmt.Sprintf("%.1f h", sec/3600)
	default:
		return fmt.Sprintf("%.3f s", sec)
	}
}

// Loop returns the underlying simulation loop.
func (m Model) Loop() *sim.Loop { return m.loop }

// Integrator returns the name of the active integrator.
func (m Model) Integrator() string { return m.integrator }
