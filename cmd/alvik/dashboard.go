package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/alvik/pkg/behavior"
	"github.com/gwillem/alvik/pkg/level"
)

const (
	headerHeight = 3 // title, status line, blank
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Series plotted on the chart.
const (
	seriesPitch  = "pitch"
	seriesFront  = "front"
	seriesRight  = "right"
	seriesWheelL = "wheel L"
	seriesWheelR = "wheel R"
)

var seriesOrder = []string{seriesPitch, seriesFront, seriesRight, seriesWheelL, seriesWheelR}

var seriesColors = map[string]string{
	seriesPitch:  "208", // orange
	seriesFront:  "196", // red
	seriesRight:  "51",  // cyan
	seriesWheelL: "46",  // green
	seriesWheelR: "226", // yellow
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type dashboardModel struct {
	level    level.Level
	runner   *behavior.Runner
	chart    *streamlinechart.Model
	state    behavior.State
	width    int
	height   int
	logs     []string
	quitting bool
}

func (m *dashboardModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

type stateMsg behavior.State
type logMsg string

func waitForState(r *behavior.Runner) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-r.States())
	}
}

func waitForLog(r *behavior.Runner) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-r.Logs())
	}
}

func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func newDashboard(lvl level.Level, r *behavior.Runner) dashboardModel {
	// pitch in degrees and distances in cm share one axis; far readings clip
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-40, 120),
	)
	for _, name := range seriesOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return dashboardModel{
		level:  lvl,
		runner: r,
		chart:  &chart,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.runner),
		waitForLog(m.runner),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		st := behavior.State(msg)
		m.state = st
		if st.HasPitch {
			m.chart.PushDataSet(seriesPitch, st.Pitch.Pitch)
		}
		if st.HasFrame {
			if v, ok := st.Frame.FrontMin(); ok {
				m.chart.PushDataSet(seriesFront, v)
			}
			if v, ok := st.Frame.Right(); ok {
				m.chart.PushDataSet(seriesRight, v)
			}
		}
		m.chart.PushDataSet(seriesWheelL, st.Wheels.Left)
		m.chart.PushDataSet(seriesWheelR, st.Wheels.Right)
		m.chart.DrawAll()
		return m, waitForState(m.runner)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.runner)
	}

	return m, nil
}

func (m dashboardModel) status() string {
	st := m.state
	light := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Light.Hex())).Render("●")
	parts := []string{
		light + " " + st.Light.String(),
		"phase " + orDash(st.Phase),
		"state " + st.Pause.String(),
		fmt.Sprintf("wheels %.0f/%.0f", st.Wheels.Left, st.Wheels.Right),
	}
	if st.Outcome != behavior.Continue {
		parts = append(parts, "outcome "+st.Outcome.String())
	}
	if st.HasColor {
		sw := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color.Colorful().Hex())).Render("■")
		parts = append(parts, "floor "+sw)
	}
	return strings.Join(parts, "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Run stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Alvik " + m.level.Title))
	sb.WriteString(statusStyle.Render("  " + m.level.Key))
	sb.WriteString("\n")
	sb.WriteString(m.status())
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range seriesOrder {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}
