// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/mackenziestarr/eccojam/control"
)

// Apply carries out one operator intent. Only a failed recording toggle
// returns an error, and it leaves recording off. Quit is left to the
// caller.
func (e *Engine) Apply(in control.Intent) error {
	c := e.controls
	switch in {
	case control.ToggleRecord:
		return e.toggleRecording()
	case control.ToggleDelay:
		c.ToggleDelay()
	case control.MarkIn:
		e.loop.MarkIn()
	case control.MarkOut:
		e.loop.MarkOut()
	case control.StopLoop:
		e.loop.Stop()
	case control.RatioUp:
		c.StepRatio(1)
	case control.RatioDown:
		c.StepRatio(-1)
	case control.Gain1Down:
		c.StepGain(Tap1, -1)
	case control.Gain1Up:
		c.StepGain(Tap1, 1)
	case control.Gain2Down:
		c.StepGain(Tap2, -1)
	case control.Gain2Up:
		c.StepGain(Tap2, 1)
	case control.Quit:
	default:
		return fmt.Errorf("%w: %v", control.ErrUnknownIntent, in)
	}
	return nil
}

func (e *Engine) toggleRecording() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	wasOn := e.tee.Enabled()
	on, err := e.tee.Toggle()
	switch {
	case err != nil && wasOn:
		e.logRecording(false)
		return fmt.Errorf("finishing recording: %w", err)
	case err != nil:
		return fmt.Errorf("enabling recording: %w", err)
	}
	e.logRecording(on)
	return nil
}
