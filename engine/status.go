// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/mackenziestarr/eccojam/loop"
)

// Status is a point-in-time view of the engine for display. Each field is
// read atomically; the set as a whole may straddle a cycle.
type Status struct {
	Ratio      float64
	Gain1      float64
	Gain2      float64
	Delay      bool
	Recording  bool
	Loop       loop.State
	Cycles     uint64
	Dropped    uint64 // record blocks lost to a full queue
	Shortfalls uint64 // cycles the converter came up short
	Halted     bool
}

func (e *Engine) Status() Status {
	g1, g2 := e.controls.Gains()
	return Status{
		Ratio:      e.controls.Ratio(),
		Gain1:      g1,
		Gain2:      g2,
		Delay:      e.controls.DelayEnabled(),
		Recording:  e.tee.Enabled(),
		Loop:       e.loop.Snapshot(),
		Cycles:     e.cycles.Load(),
		Dropped:    e.tee.Dropped(),
		Shortfalls: e.adapter.Shortfalls(),
		Halted:     e.halted.Load(),
	}
}

func onOff(b bool) string {
	if b {
		return "ON "
	}
	return "OFF"
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO "
}

// String renders the operator status line. Volumes are whole percent,
// truncated.
func (s Status) String() string {
	return fmt.Sprintf("LOOPING: %s  RECORDING: %s  DELAY: %s  SPEED: %.2f  ecco #1 volume: %d  ecco #2 volume: %d",
		onOff(s.Loop.Looping), yesNo(s.Recording), onOff(s.Delay), s.Ratio, int(s.Gain1*100), int(s.Gain2*100))
}
