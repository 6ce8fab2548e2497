// TUIWriter renders live fleet telemetry with a bubbletea view.
package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"dronefleet-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
	Quit()
}

type telemetryMsg struct{ telemetry.TelemetryRow }
type collisionMsg struct{ telemetry.CollisionRow }
type fleetStateMsg struct{ telemetry.FleetStateRow }

const maxEventLines = 50

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	enterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	exitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	tableBoxStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// TUIWriter runs a bubbletea program and feeds it rows as they are written.
type TUIWriter struct {
	program  teaProgram
	suppress func() bool
	done     chan struct{}
}

// NewTUIWriter starts the bubbletea program on an alternate screen.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		defer close(w.done)
		_, _ = p.Run()
	}()
	return w
}

// SuppressWhen installs a predicate checked before every forward. While it
// returns true the view receives no rows, so a headless toggle flipped at
// runtime freezes the display instead of racing it.
func (w *TUIWriter) SuppressWhen(fn func() bool) {
	w.suppress = fn
}

func (w *TUIWriter) suppressed() bool {
	return w.suppress != nil && w.suppress()
}

// Write forwards a telemetry row to the view.
func (w *TUIWriter) Write(row telemetry.TelemetryRow) error {
	if w.suppressed() {
		return nil
	}
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteBatch forwards multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteCollision forwards a collision transition to the event log.
func (w *TUIWriter) WriteCollision(row telemetry.CollisionRow) error {
	if w.suppressed() {
		return nil
	}
	w.program.Send(collisionMsg{row})
	return nil
}

// WriteState forwards the periodic fleet summary.
func (w *TUIWriter) WriteState(row telemetry.FleetStateRow) error {
	if w.suppressed() {
		return nil
	}
	w.program.Send(fleetStateMsg{row})
	return nil
}

// Close stops the program and waits for the terminal to be restored.
func (w *TUIWriter) Close() {
	w.program.Quit()
	<-w.done
}

type tuiModel struct {
	tbl    table.Model
	drones map[string]telemetry.TelemetryRow
	events []string
	state  telemetry.FleetStateRow
	width  int
	height int
}

func newTUIModel() tuiModel {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width, height = 100, 30
	}
	cols := []table.Column{
		{Title: "Drone", Width: 22},
		{Title: "Model", Width: 20},
		{Title: "Journey", Width: 10},
		{Title: "Batt%", Width: 6},
		{Title: "Pos (x,y,z)", Width: 24},
		{Title: "m/s", Width: 6},
		{Title: "Waypoint", Width: 24},
	}
	tbl := table.New(table.WithColumns(cols), table.WithFocused(true))
	return tuiModel{
		tbl:    tbl,
		drones: make(map[string]telemetry.TelemetryRow),
		width:  width,
		height: height,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case telemetryMsg:
		if msg.Journey == "completed" {
			delete(m.drones, msg.DroneID)
			m.pushEvent(statusStyle.Render(fmt.Sprintf(
				"t=%.1fs %s completed (%.0f m, %.0f s)",
				msg.SimTime, msg.DroneID, msg.DistanceM, msg.FlightTimeS)))
		} else {
			m.drones[msg.DroneID] = msg.TelemetryRow
		}
		m.refreshRows()
		return m, nil
	case collisionMsg:
		style := enterStyle
		if msg.Event == "exit" {
			style = exitStyle
		}
		m.pushEvent(style.Render(fmt.Sprintf("t=%.1fs collision %s %s %v",
			msg.SimTime, msg.Event, msg.DroneID, msg.Partners)))
		return m, nil
	case fleetStateMsg:
		m.state = msg.FleetStateRow
		return m, nil
	}
	return m, nil
}

func (m *tuiModel) pushEvent(line string) {
	m.events = append(m.events, wordwrap.String(line, m.width-2))
	if len(m.events) > maxEventLines {
		m.events = m.events[len(m.events)-maxEventLines:]
	}
}

func (m *tuiModel) refreshRows() {
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		r := m.drones[id]
		rows = append(rows, table.Row{
			r.DroneID,
			r.Model,
			r.Journey,
			fmt.Sprintf("%.0f", r.BatteryPct),
			fmt.Sprintf("%.0f,%.0f,%.0f", r.X, r.Y, r.Z),
			fmt.Sprintf("%.1f", r.SpeedMS),
			r.Waypoint,
		})
	}
	m.tbl.SetRows(rows)
	h := m.height - len(m.eventTail()) - 6
	if h < 4 {
		h = 4
	}
	m.tbl.SetHeight(h)
}

func (m *tuiModel) eventTail() []string {
	n := m.height / 4
	if n < 3 {
		n = 3
	}
	if len(m.events) <= n {
		return m.events
	}
	return m.events[len(m.events)-n:]
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("dronefleet-sim"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"t=%.1fs  active=%d  spawned=%d/%d  colliding=%d  mean_dist=%.0fm  negotiation=%s",
		m.state.SimTime, m.state.ActiveDrones, m.state.SpawnedPlans,
		m.state.TotalPlans, m.state.CollidingDrones, m.state.MeanPairwiseDistM,
		m.state.Negotiation)))
	b.WriteString("\n")
	b.WriteString(tableBoxStyle.Render(m.tbl.View()))
	b.WriteString("\n")
	for _, line := range m.eventTail() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("q: quit"))
	return b.String()
}
