// SPDX-License-Identifier: EPL-2.0

// Package config holds the settings of an eccojam session.
//
// Values come from Default, are overlaid by an optional YAML file and are
// finally overridden by command line flags in the driver.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mackenziestarr/eccojam/srconv"
)

var ErrInvalid = errors.New("invalid config")

// ConverterBackend selects the rate converter implementation.
type ConverterBackend string

const (
	ConverterNative        ConverterBackend = "native"
	ConverterLibsamplerate ConverterBackend = "libsamplerate"
)

// DeviceBackend selects the audio output.
type DeviceBackend string

const (
	DevicePortAudio DeviceBackend = "portaudio"
	DeviceOto       DeviceBackend = "oto"
	// DeviceNull runs the engine on a wall clock and discards the output.
	DeviceNull DeviceBackend = "null"
)

type Config struct {
	Engine    Engine    `yaml:"engine"`
	Converter Converter `yaml:"converter"`
	Delay     Delay     `yaml:"delay"`
	Record    Record    `yaml:"record"`
	Device    Device    `yaml:"device"`
	Control   Control   `yaml:"control"`
	Source    Source    `yaml:"source"`
}

type Engine struct {
	// FramesPerBuffer is the fixed block the device asks for per cycle.
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	Ratio           float64 `yaml:"ratio"`
	RatioStep       float64 `yaml:"ratio_step"`
	MinRatio        float64 `yaml:"min_ratio"`
	MaxRatio        float64 `yaml:"max_ratio"`
}

type Converter struct {
	Backend   ConverterBackend `yaml:"backend"`
	Algorithm string           `yaml:"algorithm"` // empty asks the operator
}

// Delay distances are in samples.
type Delay struct {
	Capacity int     `yaml:"capacity"`
	Tap1     int     `yaml:"tap1"`
	Tap2     int     `yaml:"tap2"`
	Gain1    float64 `yaml:"gain1"`
	Gain2    float64 `yaml:"gain2"`
	GainStep float64 `yaml:"gain_step"`
	MaxGain  float64 `yaml:"max_gain"`
}

type Record struct {
	Path  string `yaml:"path"`
	Queue int    `yaml:"queue"`
}

type Device struct {
	Backend DeviceBackend `yaml:"backend"`
}

type Control struct {
	Keyboard    bool   `yaml:"keyboard"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

// Source controls load-time normalization of the input file.
type Source struct {
	SampleRate int  `yaml:"sample_rate"` // 0 keeps the file's rate
	Mono       bool `yaml:"mono"`
	MaxFrames  int  `yaml:"max_frames"` // 0 means unlimited
}

// Default returns the settings eccojam runs with when nothing is configured.
func Default() Config {
	return Config{
		Engine: Engine{
			FramesPerBuffer: 1024,
			Ratio:           1.0,
			RatioStep:       0.1,
			MinRatio:        0.2,
			MaxRatio:        4.0,
		},
		Converter: Converter{
			Backend: ConverterNative,
		},
		Delay: Delay{
			Capacity: 51200,
			Tap1:     44100,
			Tap2:     23050,
			Gain1:    0.5,
			Gain2:    0.3,
			GainStep: 0.1,
			MaxGain:  0.8,
		},
		Record: Record{
			Path:  "default.wav",
			Queue: 64,
		},
		Device: Device{
			Backend: DevicePortAudio,
		},
		Control: Control{
			Keyboard:    true,
			NATSSubject: "eccojam.control",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected. An
// empty file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode overlays YAML from r onto cfg without validating it.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	e := c.Engine
	if e.FramesPerBuffer <= 0 {
		bad("engine.frames_per_buffer must be positive, got %d", e.FramesPerBuffer)
	}
	if e.MinRatio < srconv.MinRatio || e.MaxRatio > srconv.MaxRatio || e.MinRatio > e.MaxRatio {
		bad("engine ratio range [%v, %v] outside [%v, %v]", e.MinRatio, e.MaxRatio, srconv.MinRatio, srconv.MaxRatio)
	}
	if e.Ratio < e.MinRatio || e.Ratio > e.MaxRatio {
		bad("engine.ratio %v outside [%v, %v]", e.Ratio, e.MinRatio, e.MaxRatio)
	}
	if e.RatioStep <= 0 {
		bad("engine.ratio_step must be positive, got %v", e.RatioStep)
	}

	switch c.Converter.Backend {
	case ConverterNative, ConverterLibsamplerate:
	default:
		bad("converter.backend %q", c.Converter.Backend)
	}
	if c.Converter.Algorithm != "" {
		if _, err := srconv.ParseAlgorithm(c.Converter.Algorithm); err != nil {
			bad("converter.algorithm: %v", err)
		}
	}

	d := c.Delay
	if d.Capacity <= 0 {
		bad("delay.capacity must be positive, got %d", d.Capacity)
	}
	if d.Tap1 < 0 || d.Tap1 >= d.Capacity || d.Tap2 < 0 || d.Tap2 >= d.Capacity {
		bad("delay taps %d, %d outside [0, %d)", d.Tap1, d.Tap2, d.Capacity)
	}
	if d.MaxGain < 0 {
		bad("delay.max_gain must not be negative, got %v", d.MaxGain)
	}
	if d.Gain1 < 0 || d.Gain1 > d.MaxGain || d.Gain2 < 0 || d.Gain2 > d.MaxGain {
		bad("delay gains %v, %v outside [0, %v]", d.Gain1, d.Gain2, d.MaxGain)
	}
	if d.GainStep <= 0 {
		bad("delay.gain_step must be positive, got %v", d.GainStep)
	}

	if c.Record.Path == "" {
		bad("record.path is empty")
	}
	if c.Record.Queue < 0 {
		bad("record.queue must not be negative, got %d", c.Record.Queue)
	}

	switch c.Device.Backend {
	case DevicePortAudio, DeviceOto, DeviceNull:
	default:
		bad("device.backend %q", c.Device.Backend)
	}

	if c.Source.SampleRate < 0 {
		bad("source.sample_rate must not be negative, got %d", c.Source.SampleRate)
	}
	if c.Source.MaxFrames < 0 {
		bad("source.max_frames must not be negative, got %d", c.Source.MaxFrames)
	}

	return errors.Join(errs...)
}
