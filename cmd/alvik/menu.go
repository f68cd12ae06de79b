package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/alvik/pkg/level"
	"github.com/gwillem/alvik/pkg/logx"
)

type MenuCommand struct {
	Buttons bool    `long:"buttons" description:"Choose with the OK/CANCEL pads on the robot instead of the keyboard"`
	Sim     bool    `long:"sim" description:"Run levels against the simulator"`
	Pace    float64 `long:"pace" default:"1" description:"Simulator speed relative to real time"`
}

// menuWindow is the number of entries shown at once.
const menuWindow = 7

var grayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

type menuModel struct {
	levels   []level.Level
	cursor   int
	chosen   *level.Level
	quitting bool
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "down", "j", "tab":
			m.cursor = (m.cursor + 1) % len(m.levels)
		case "up", "k", "shift+tab":
			m.cursor = (m.cursor + len(m.levels) - 1) % len(m.levels)
		case "enter", " ":
			l := m.levels[m.cursor]
			m.chosen = &l
			return m, tea.Quit
		}
	}
	return m, nil
}

// menuLines renders the visible part of the menu with the selection in its
// level colour and the rest grey.
func menuLines(levels []level.Level, idx int) []string {
	start := 0
	if len(levels) > menuWindow {
		half := menuWindow / 2
		start = max(0, min(idx-half, len(levels)-menuWindow))
	}
	end := min(len(levels), start+menuWindow)

	var lines []string
	for i := start; i < end; i++ {
		l := levels[i]
		if i == idx {
			style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(l.Light.Hex()))
			lines = append(lines, style.Render("> "+l.Key))
		} else {
			lines = append(lines, grayStyle.Render("  "+l.Key))
		}
	}
	if len(levels) > menuWindow {
		lines = append(lines, fmt.Sprintf("  (%d/%d)", idx+1, len(levels)))
	}
	return lines
}

func (m menuModel) View() string {
	if m.quitting || m.chosen != nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Choose a level"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  [L1 green, L2 orange, L3 red]  ↑/↓ select, enter run, q quit"))
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(menuLines(m.levels, m.cursor), "\n"))
	sb.WriteString("\n")
	return sb.String()
}

func (c *MenuCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := logx.Init(os.Stderr, opts.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Buttons {
		return c.onRobot(ctx, cfg)
	}

	levels := level.All()
	cursor := 0
	for {
		p := tea.NewProgram(menuModel{levels: levels, cursor: cursor})
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("menu: %w", err)
		}
		m := final.(menuModel)
		if m.chosen == nil {
			return nil
		}
		cursor = m.cursor
		lvl := *m.chosen

		fmt.Println()
		fmt.Println(subHeaderStyle.Render("> Start: " + lvl.Key))

		var sess *session
		if c.Sim {
			sess = openSim(lvl.Key, cfg, c.Pace, logger)
		} else {
			sess, err = openHardware(ctx, cfg, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(dimStyle.Render("Press OK on the robot to start, CANCEL to pause, Ctrl-C to quit."))
		}

		out, err := level.NewLoader(sess.robot, cfg, logger).Run(ctx, lvl)
		sess.close()

		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Println(warnStyle.Render("[!] " + err.Error()))
		} else {
			fmt.Printf("[OK] %s finished: %s\n", lvl.Title, out)
		}
		fmt.Println()
		if ctx.Err() != nil {
			return nil
		}
	}
}

// onRobot runs the button chooser and loader on the robot until Ctrl-C.
func (c *MenuCommand) onRobot(ctx context.Context, cfg level.Config) error {
	sess, err := openHardware(ctx, cfg, logx.L())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.close()

	levels := level.Menu()
	fmt.Println(headerStyle.Render("=== Choose a level (OK = next, CANCEL = start) ==="))
	fmt.Println(dimStyle.Render("  [L1 green, L2 orange, L3 red]"))
	show := func(idx int) {
		fmt.Println()
		fmt.Println(strings.Join(menuLines(levels, idx), "\n"))
	}

	err = level.NewLoader(sess.robot, cfg, logx.L()).Loop(ctx, levels, show)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Stop.")
		return nil
	}
	return err
}
