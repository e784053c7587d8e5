// SPDX-License-Identifier: EPL-2.0

// Package portaudio plays the engine through the default PortAudio output.
// It needs cgo; headless builds get a stub whose Open fails.
package portaudio
