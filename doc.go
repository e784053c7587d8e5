// SPDX-License-Identifier: EPL-2.0

// Package eccojam is a real-time tape-loop effects engine for Go.
//
// A sound file is decoded once into memory and played back through a
// processing cycle that loops, re-pitches and echoes it while an operator
// plays with the controls.
//
// # Processing Cycle
//
// Every device period the engine produces one fixed size block:
//
//	loop.Controller  -> frames from the store, wrapping or looping
//	resample.Adapter -> one block at the current ratio (srconv)
//	delay.Line       -> dry signal plus two echo taps
//	record.Tee       -> copy to a WAV file when recording
//
// Process never blocks, logs or allocates. Controls are atomics written by
// the control goroutine and read once per cycle.
//
// # Loading
//
// LoadSource picks a decoder from the file extension (WAV, AIFF, MP3 and
// Ogg Vorbis) and applies the optional load-time conversions:
//
//	store, err := eccojam.LoadSource("loop.wav", cfg.Source)
//	e, err := engine.New(store, cfg)
//	err = e.Start(portaudio.New())
//
// # Controls
//
// Intents come from the keyboard or from NATS (package control) and are
// applied with Engine.Apply:
//
//	e.Apply(control.MarkIn)
//	e.Apply(control.MarkOut) // looping from here
//	e.Apply(control.RatioUp)
//
// See the individual subpackages for more detailed documentation.
package eccojam
