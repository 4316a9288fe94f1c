package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/room"
)

const (
	width           = 36
	height          = 14
	historyCapacity = 240

	heaterStep   = 100.0 // W per key press
	setpointStep = 0.5   // °C per key press
)

type (
	snapshotMsg host.Snapshot
	errMsg      struct{ err error }
	frameMsg    time.Time
	stoppedMsg  struct{}
)

// Model renders host snapshots and turns key presses into commands.
type Model struct {
	ctx      context.Context
	host     *host.Host
	workshop *config.Workshop

	snap     host.Snapshot
	received bool
	initial  float64
	trend    float64 // pot temperature change since the previous snapshot
	temps    *room.Ring[float64]
	bps      *room.Ring[float64]
	roomTemp *room.Ring[float64]
	humidity *room.Ring[float64]

	theme    Theme
	styles   styles
	layers   [4]*Canvas
	frame    int
	lastErr  error
	showHelp bool
	stopped  bool
}

// NewModel watches h, which the caller runs. w labels the view and sets
// the reset state.
func NewModel(ctx context.Context, h *host.Host, w *config.Workshop, theme Theme) Model {
	m := Model{
		ctx:      ctx,
		host:     h,
		workshop: w,
		initial:  w.Mass,
		temps:    room.NewRing[float64](historyCapacity),
		bps:      room.NewRing[float64](historyCapacity),
		roomTemp: room.NewRing[float64](historyCapacity),
		humidity: room.NewRing[float64](historyCapacity),
		theme:    theme,
		styles:   newStyles(theme),
	}
	for i := range m.layers {
		m.layers[i] = NewCanvas(width, height)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitSnapshot(), frame())
}

func (m Model) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.host.Snapshots():
			return snapshotMsg(s)
		case <-m.ctx.Done():
			return stoppedMsg{}
		}
	}
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) send(cmd host.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 2*time.Second)
		defer cancel()
		return errMsg{m.host.Send(ctx, cmd)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case snapshotMsg:
		m.observe(host.Snapshot(msg))
		return m, m.waitSnapshot()
	case frameMsg:
		m.frame++
		return m, frame()
	case errMsg:
		m.lastErr = msg.err
	case stoppedMsg:
		m.stopped = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) observe(s host.Snapshot) {
	if !m.received || s.Time < m.snap.Time {
		m.temps.Clear()
		m.bps.Clear()
		m.roomTemp.Clear()
		m.humidity.Clear()
		m.initial = s.LiquidMass + s.ResidueMass + s.VaporizedMass
	}
	m.trend = 0
	if prev, ok := m.temps.Last(); ok {
		m.trend = s.Temperature - prev
	}
	m.snap = s
	m.received = true
	m.temps.Push(s.Temperature)
	m.bps.Push(s.BoilingPoint)
	m.roomTemp.Push(s.RoomTemperature)
	m.humidity.Push(s.RoomHumidity * 100)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.snap
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		if s.Paused {
			return m, m.send(host.ResumeCommand())
		}
		return m, m.send(host.PauseCommand())
	case "+", "=":
		return m, m.send(host.Speed(math.Min(s.Speed*2, host.MaxSpeed)))
	case "-", "_":
		return m, m.send(host.Speed(math.Max(s.Speed/2, host.MinSpeed)))
	case "0":
		return m, m.send(host.Speed(1))
	case "up", "k":
		return m, m.send(host.HeaterPower(s.HeaterPower + heaterStep))
	case "down", "j":
		return m, m.send(host.HeaterPower(math.Max(0, s.HeaterPower-heaterStep)))
	case "o":
		return m, m.send(host.HeaterPower(0))
	case "]":
		if s.HasAC {
			return m, m.send(host.Setpoint(s.Setpoint + setpointStep))
		}
	case "[":
		if s.HasAC {
			return m, m.send(host.Setpoint(s.Setpoint - setpointStep))
		}
	case "r":
		return m, m.send(host.Reset(m.workshop.Initial()))
	case "t":
		m.theme = m.theme.next()
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) View() string {
	if !m.received {
		return m.styles.muted.Render("waiting for the first snapshot…")
	}
	s := m.snap

	for i, c := range m.layers {
		c.Clear()
		drawPot(c, potLayer(i), s, m.initial, m.frame)
	}
	pot := canvasStyle.Render(m.compose())

	var b strings.Builder
	b.WriteString(m.styles.title.Render(strings.ToUpper(m.workshop.Name)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if m.temps.Len() > 1 {
		chart := asciigraph.PlotMany([][]float64{m.temps.Items(), m.bps.Items()},
			asciigraph.Height(6), asciigraph.Width(36), asciigraph.Precision(1),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption("pot °C / boiling point"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", Clock(s.Time))
	row("Phase", m.styles.accent.Render(s.Phase.String()))
	row("Pot", fmt.Sprintf("%.2f °C %s", s.Temperature, Trend(m.trend)))
	row("Boils at", fmt.Sprintf("%.2f °C", s.BoilingPoint))
	row("Liquid", ProgressBar(fill(s, m.initial), 16, m.styles.liquid)+" "+Mass(s.LiquidMass))
	row("Vaporized", Mass(s.VaporizedMass))
	if s.ResidueMass > 0 {
		row("Residue", Mass(s.ResidueMass))
	}
	row("Heater", Power(s.HeaterPower))
	row("Speed", "×"+humanize.Comma(int64(s.Speed)))

	b.WriteString("\n" + m.styles.title.Render("ROOM") + "\n")
	row("Air", fmt.Sprintf("%.2f °C %s", s.RoomTemperature, Sparkline(m.roomTemp.Items(), 12)))
	row("Pressure", Pressure(s.RoomPressure))
	row("Humidity", fmt.Sprintf("%.1f %% %s", s.RoomHumidity*100, Sparkline(m.humidity.Items(), 12)))
	if s.Condensed > 0 {
		row("Condensed", Mass(s.Condensed))
	}
	if s.HasAC {
		row("AC", fmt.Sprintf("%s → %.1f °C", Power(s.ACOutput), s.Setpoint))
	}
	if len(s.Alerts) > 0 {
		row("Alerts", m.styles.warning.Render(strings.Join(s.Alerts, " ")))
	}
	if m.lastErr != nil {
		b.WriteString(m.styles.error.Render(m.lastErr.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("SP:Pause +/-:Speed ↑↓:Heater O:Off\n[ ]:Setpoint R:Reset T:Theme ?:Help Q:Quit"))
	view := lipgloss.JoinHorizontal(lipgloss.Top, pot, statsStyle.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

func (m Model) status() string {
	switch {
	case m.stopped:
		return m.styles.error.Render("STOPPED")
	case m.snap.Paused:
		return m.styles.warning.Render("PAUSED")
	default:
		return m.styles.accent.Render("RUNNING")
	}
}

// compose overlays the layers cell by cell, later layers on top.
func (m Model) compose() string {
	order := []struct {
		layer potLayer
		style lipgloss.Style
	}{
		{layerFlame, m.styles.flame},
		{layerSteam, m.styles.steam},
		{layerLiquid, m.styles.liquid},
		{layerPot, m.styles.muted.Foreground(m.theme.Text)},
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cell, style := rune(blank), lipgloss.NewStyle()
			for _, o := range order {
				if r := m.layers[o.layer].Grid[y][x]; r != blank {
					cell |= r
					style = o.style
				}
			}
			b.WriteString(style.Render(string(cell)))
		}
		if y < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  + / -    - Double/halve speed       ║
║  0        - Real time                ║
║  Up/K     - Heater +100 W            ║
║  Down/J   - Heater -100 W            ║
║  O        - Heater off               ║
║  [ / ]    - AC setpoint -/+ 0.5 °C   ║
║  R        - Reset the pot            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run drives h in the background and shows it until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, h *host.Host, w *config.Workshop, theme Theme) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- h.Run(ctx) }()

	_, err := tea.NewProgram(NewModel(ctx, h, w, theme), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	cancel()
	if herr := <-errc; herr != nil && !errors.Is(herr, context.Canceled) {
		return herr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
