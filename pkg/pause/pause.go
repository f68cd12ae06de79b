// Package pause implements the OK/CANCEL pause-resume supervisor shared by
// all levels.
package pause

import (
	"context"
	"time"

	"github.com/gwillem/alvik/pkg/robot"
)

// State of the supervisor.
type State int

const (
	WaitingToStart State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case WaitingToStart:
		return "waiting"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Timing of the supervisor's wait loops.
const (
	StartPoll     = 50 * time.Millisecond
	PausePoll     = 40 * time.Millisecond
	DebounceDelay = 120 * time.Millisecond
)

// Supervisor owns the pause state. Behaviours read it; only the supervisor
// changes it.
type Supervisor struct {
	robot *robot.Robot
	state State

	// PausedLight is shown while paused; levels differ in colour.
	PausedLight robot.Light

	// OnChange, if set, is called after every state change.
	OnChange func(State)
}

// New returns a supervisor in WaitingToStart.
func New(r *robot.Robot) *Supervisor {
	return &Supervisor{
		robot:       r,
		state:       WaitingToStart,
		PausedLight: robot.LightPause,
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	return s.state
}

func (s *Supervisor) set(st State) {
	s.state = st
	if s.OnChange != nil {
		s.OnChange(st)
	}
}

// WaitForStart holds the robot braked with the waiting light until OK is
// pressed. A finger still on OK from the menu must be lifted first.
func (s *Supervisor) WaitForStart(ctx context.Context) error {
	s.set(WaitingToStart)
	for s.robot.ConfirmPressed(ctx) {
		if err := s.robot.Sleep(ctx, PausePoll); err != nil {
			return err
		}
	}
	for !s.robot.ConfirmPressed(ctx) {
		s.robot.Indicate(ctx, robot.LightWait)
		s.robot.Brake(ctx)
		if err := s.robot.Sleep(ctx, StartPoll); err != nil {
			return err
		}
	}
	if err := s.robot.Sleep(ctx, DebounceDelay); err != nil {
		return err
	}
	s.robot.Indicate(ctx, robot.LightGo)
	s.set(Running)
	return nil
}

// Check polls CANCEL. If pressed while running, it stops the robot, waits
// for OK and returns true once running again; the caller must re-issue its
// motion command. It returns false without blocking otherwise.
func (s *Supervisor) Check(ctx context.Context) (bool, error) {
	if s.state != Running || !s.robot.CancelPressed(ctx) {
		return false, nil
	}
	s.robot.Stop(ctx)
	s.robot.Indicate(ctx, s.PausedLight)
	s.set(Paused)
	for !s.robot.ConfirmPressed(ctx) {
		if err := s.robot.Sleep(ctx, PausePoll); err != nil {
			return true, err
		}
	}
	if err := s.robot.Sleep(ctx, DebounceDelay); err != nil {
		return true, err
	}
	s.robot.Indicate(ctx, robot.LightGo)
	s.set(Running)
	return true, nil
}
