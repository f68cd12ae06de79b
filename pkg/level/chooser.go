package level

import (
	"context"
	"errors"
	"time"

	"github.com/gwillem/alvik/pkg/robot"
)

// ChoosePoll is the touch pad polling period of the chooser.
const ChoosePoll = 25 * time.Millisecond

// Choose lets the operator pick from levels with the touch pads: OK moves
// to the next entry, CANCEL starts the selected one. Each press counts once.
// show, if set, is called whenever the selection changes.
func Choose(ctx context.Context, r *robot.Robot, levels []Level, show func(idx int)) (Level, error) {
	if len(levels) == 0 {
		return Level{}, errors.New("no levels")
	}

	// fingers off first so a held pad is not read as a press
	for r.ConfirmPressed(ctx) || r.CancelPressed(ctx) {
		if err := r.Sleep(ctx, 20*time.Millisecond); err != nil {
			return Level{}, err
		}
	}

	i := 0
	r.Indicate(ctx, levels[i].Light)
	if show != nil {
		show(i)
	}
	prevOK, prevCancel := r.ConfirmPressed(ctx), r.CancelPressed(ctx)

	for {
		ok, cancel := r.ConfirmPressed(ctx), r.CancelPressed(ctx)
		if ok && !prevOK {
			i = (i + 1) % len(levels)
			r.Indicate(ctx, levels[i].Light)
			if show != nil {
				show(i)
			}
		}
		if cancel && !prevCancel {
			return levels[i], nil
		}
		prevOK, prevCancel = ok, cancel
		if err := r.Sleep(ctx, ChoosePoll); err != nil {
			return Level{}, err
		}
	}
}
