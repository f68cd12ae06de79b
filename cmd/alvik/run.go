package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwillem/alvik/pkg/behavior"
	"github.com/gwillem/alvik/pkg/level"
	"github.com/gwillem/alvik/pkg/logx"
)

type RunCommand struct {
	Sim       bool    `long:"sim" description:"Run against the simulator instead of the robot"`
	Pace      float64 `long:"pace" default:"1" description:"Simulator speed relative to real time (0 = as fast as possible)"`
	Dashboard bool    `short:"d" long:"dashboard" description:"Show a live dashboard"`

	Args struct {
		Level string `positional-arg-name:"level" required:"yes" description:"Level key, prefix or number"`
	} `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	lvl, err := level.Lookup(c.Args.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Available levels:")
		for _, l := range level.All() {
			fmt.Fprintf(os.Stderr, "  %s\n", l.Key)
		}
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// the dashboard owns the terminal, so logs go nowhere
	var logw io.Writer = os.Stderr
	if c.Dashboard {
		logw = io.Discard
	}
	logger := logx.Init(logw, opts.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := c.open(ctx, lvl, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.close()

	loader := level.NewLoader(sess.robot, cfg, logger)

	if !c.Dashboard {
		if !c.Sim {
			fmt.Println(dimStyle.Render("Press OK on the robot to start, CANCEL to pause, Ctrl-C to quit."))
		}
		out, err := loader.Run(ctx, lvl)
		return report(os.Stdout, lvl, out, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	type result struct {
		out behavior.Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := loader.Run(ctx, lvl)
		done <- result{out, err}
	}()

	p := tea.NewProgram(newDashboard(lvl, loader.Runner), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		cancel()
		return fmt.Errorf("dashboard: %w", err)
	}
	cancel()
	res := <-done
	return report(os.Stdout, lvl, res.out, res.err)
}

func (c *RunCommand) open(ctx context.Context, lvl level.Level, cfg level.Config) (*session, error) {
	if c.Sim {
		return openSim(lvl.Key, cfg, c.Pace, logx.L()), nil
	}
	return openHardware(ctx, cfg, logx.L())
}

// report prints the outcome. A level error is returned rather than exiting
// here so the caller's deferred session close still releases the wheels.
func report(w io.Writer, lvl level.Level, out behavior.Outcome, err error) error {
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", lvl.Title, err)
	}
	style := successStyle
	if out != behavior.Success {
		style = warnStyle
	}
	fmt.Fprintf(w, "%s: %s\n", lvl.Title, style.Render(out.String()))
	return nil
}
