// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"
)

// Tap names one of the two delay read heads.
type Tap uint8

const (
	Tap1 Tap = iota
	Tap2
)

// Limits bound what the operator can set.
type Limits struct {
	MinRatio  float64
	MaxRatio  float64
	RatioStep float64
	MaxGain   float64
	GainStep  float64
}

// Controls are the knobs shared between the control goroutine, which sets
// them, and the audio goroutine, which reads them once per cycle. Every
// field is a single atomic word.
type Controls struct {
	limits Limits

	ratio   atomic.Uint64 // float64 bits
	gains   [2]atomic.Uint64
	delayOn atomic.Bool
}

func newControls(l Limits, ratio, gain1, gain2 float64) *Controls {
	c := &Controls{limits: l}
	c.SetRatio(ratio)
	c.SetGain(Tap1, gain1)
	c.SetGain(Tap2, gain2)
	return c
}

func (c *Controls) Limits() Limits { return c.limits }

func (c *Controls) Ratio() float64 { return math.Float64frombits(c.ratio.Load()) }

// SetRatio stores r clamped to the ratio limits and returns what was stored.
func (c *Controls) SetRatio(r float64) float64 {
	return update(&c.ratio, c.limits.MinRatio, c.limits.MaxRatio, func(float64) float64 { return r })
}

// StepRatio moves the ratio by dir steps, stopping at the limits.
func (c *Controls) StepRatio(dir int) float64 {
	return update(&c.ratio, c.limits.MinRatio, c.limits.MaxRatio, func(r float64) float64 {
		return r + float64(dir)*c.limits.RatioStep
	})
}

func (c *Controls) Gain(t Tap) float64 { return math.Float64frombits(c.gains[t].Load()) }

func (c *Controls) Gains() (float64, float64) { return c.Gain(Tap1), c.Gain(Tap2) }

// SetGain stores g clamped to [0, MaxGain] and returns what was stored.
func (c *Controls) SetGain(t Tap, g float64) float64 {
	return update(&c.gains[t], 0, c.limits.MaxGain, func(float64) float64 { return g })
}

func (c *Controls) StepGain(t Tap, dir int) float64 {
	return update(&c.gains[t], 0, c.limits.MaxGain, func(g float64) float64 {
		return g + float64(dir)*c.limits.GainStep
	})
}

func (c *Controls) DelayEnabled() bool { return c.delayOn.Load() }

func (c *Controls) SetDelay(on bool) { c.delayOn.Store(on) }

// ToggleDelay flips the delay and returns the new setting.
func (c *Controls) ToggleDelay() bool {
	for {
		old := c.delayOn.Load()
		if c.delayOn.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// update applies f to the value in v, then snaps and clamps the result to
// [lo, hi].
func update(v *atomic.Uint64, lo, hi float64, f func(float64) float64) float64 {
	for {
		old := v.Load()
		next := clamp(snap(f(math.Float64frombits(old))), lo, hi)
		if v.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// snap rounds away the drift repeated decimal steps accumulate, so ten
// steps of 0.1 from 0.2 land on 1.2 exactly.
func snap(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
