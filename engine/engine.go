// SPDX-License-Identifier: EPL-2.0

// Package engine runs the processing cycle and owns every component it
// touches.
//
// One cycle pulls frames through the loop controller into the resampler,
// mixes the delay taps, offers the block to the recording tee and hands it
// to the device. Process is the only method the audio goroutine calls; it
// does not lock, log or allocate. Everything else belongs to the control
// goroutine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/config"
	"github.com/mackenziestarr/eccojam/delay"
	"github.com/mackenziestarr/eccojam/device"
	"github.com/mackenziestarr/eccojam/loop"
	"github.com/mackenziestarr/eccojam/record"
	"github.com/mackenziestarr/eccojam/resample"
	"github.com/mackenziestarr/eccojam/srconv"
	"github.com/mackenziestarr/eccojam/srconv/libsamplerate"
)

type options struct {
	logger *log.Logger
	conv   srconv.Converter
	opener record.Opener
}

type Option func(*options)

// WithLogger sets where lifecycle and recording events are logged. The
// default discards them.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConverter uses conv instead of building one from the config. The
// engine takes ownership and closes it.
func WithConverter(conv srconv.Converter) Option {
	return func(o *options) { o.conv = conv }
}

// WithOpener replaces the WAV file sink used for recording.
func WithOpener(op record.Opener) Option {
	return func(o *options) { o.opener = op }
}

type Engine struct {
	store    *audio.Store
	loop     *loop.Controller
	conv     srconv.Converter
	adapter  *resample.Adapter
	delay    *delay.Line
	tee      *record.Tee
	controls *Controls
	params   device.Params
	logger   *log.Logger

	halted atomic.Bool
	err    atomic.Pointer[error]
	fatal  chan error
	cycles atomic.Uint64

	mu      sync.Mutex // guards the lifecycle below
	dev     device.Device
	running bool
	closed  bool
}

// New builds an engine around store. Nothing plays until Start.
func New(store *audio.Store, cfg config.Config, opts ...Option) (*Engine, error) {
	o := options{opener: record.WAVOpener{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	if err := cfg.Validate(); err != nil {
		if o.conv != nil {
			_ = o.conv.Close()
		}
		return nil, err
	}

	ch := store.Channels()
	ec := cfg.Engine
	params := device.Params{
		SampleRate:      store.SampleRate(),
		Channels:        ch,
		FramesPerBuffer: ec.FramesPerBuffer,
	}

	conv := o.conv
	if conv == nil {
		var err error
		conv, err = newConverter(cfg.Converter, ch, resample.MaxInputFrames(ec.FramesPerBuffer, ec.MinRatio))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConverter, err)
		}
	}

	lc := loop.New(store)
	adapter, err := resample.New(lc, conv, ch, ec.FramesPerBuffer, ec.MinRatio)
	if err != nil {
		_ = conv.Close()
		return nil, err
	}

	dc := cfg.Delay
	line, err := delay.New(dc.Capacity, dc.Tap1, dc.Tap2, delay.WithChannels(ch))
	if err != nil {
		_ = conv.Close()
		return nil, err
	}

	format := record.Format{
		SampleRate: store.SampleRate(),
		Channels:   ch,
		BitDepth:   store.BitDepth(),
	}
	tee := record.New(o.opener, cfg.Record.Path, format, cfg.Record.Queue, params.BlockSamples())

	limits := Limits{
		MinRatio:  ec.MinRatio,
		MaxRatio:  ec.MaxRatio,
		RatioStep: ec.RatioStep,
		MaxGain:   dc.MaxGain,
		GainStep:  dc.GainStep,
	}

	return &Engine{
		store:    store,
		loop:     lc,
		conv:     conv,
		adapter:  adapter,
		delay:    line,
		tee:      tee,
		controls: newControls(limits, ec.Ratio, dc.Gain1, dc.Gain2),
		params:   params,
		logger:   o.logger,
		fatal:    make(chan error, 1),
	}, nil
}

func newConverter(cfg config.Converter, channels, maxInputFrames int) (srconv.Converter, error) {
	alg := srconv.SincBest
	if cfg.Algorithm != "" {
		var err error
		if alg, err = srconv.ParseAlgorithm(cfg.Algorithm); err != nil {
			return nil, err
		}
	}

	if cfg.Backend == config.ConverterLibsamplerate {
		c, err := libsamplerate.New(alg, channels, maxInputFrames)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return srconv.New(alg, channels)
}

// Params is the stream layout devices are opened with.
func (e *Engine) Params() device.Params { return e.params }

func (e *Engine) Controls() *Controls { return e.controls }

// Process fills out with the next block. After a converter failure the
// engine halts: out is silenced, the error is delivered once on Fatal and
// every later call returns ErrHalted.
func (e *Engine) Process(out []float32) error {
	if e.halted.Load() {
		clear(out)
		return ErrHalted
	}
	if len(out) != e.params.BlockSamples() {
		clear(out)
		return ErrBlockSize
	}

	block, err := e.adapter.Process(e.controls.Ratio())
	if err != nil {
		clear(out)
		e.halt(err)
		return err
	}

	g1, g2 := e.controls.Gains()
	e.delay.Apply(block, out, float32(g1), float32(g2), e.controls.DelayEnabled())
	e.tee.MaybeRecord(out)
	e.loop.Publish()
	e.cycles.Add(1)
	return nil
}

func (e *Engine) halt(err error) {
	if !e.halted.CompareAndSwap(false, true) {
		return
	}
	e.err.Store(&err)
	select {
	case e.fatal <- err:
	default:
	}
}

// Fatal delivers the error that halted the engine, at most once.
func (e *Engine) Fatal() <-chan error { return e.fatal }

// Err returns the error that halted the engine, or nil.
func (e *Engine) Err() error {
	if p := e.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Start opens dev with the engine's layout and starts streaming.
func (e *Engine) Start(dev device.Device) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		return ErrClosed
	case e.halted.Load():
		return ErrHalted
	case e.dev != nil && e.dev != dev:
		return fmt.Errorf("%w: already bound to another device", ErrDevice)
	case e.running:
		return nil
	}

	if e.dev == nil {
		if err := dev.Open(e.params, e.callback); err != nil {
			return fmt.Errorf("%w: open: %w", ErrDevice, err)
		}
		e.dev = dev
	}
	if err := dev.Start(); err != nil {
		return fmt.Errorf("%w: start: %w", ErrDevice, err)
	}

	e.running = true
	e.logger.Printf("streaming %d ch at %d Hz, %d frames per buffer",
		e.params.Channels, e.params.SampleRate, e.params.FramesPerBuffer)
	return nil
}

func (e *Engine) callback(out []float32) {
	_ = e.Process(out)
}

// Stop halts the device. It returns once the in-flight cycle is done.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	if !e.running {
		return nil
	}
	e.running = false
	if err := e.dev.Stop(); err != nil {
		return fmt.Errorf("%w: stop: %w", ErrDevice, err)
	}
	e.logger.Printf("stopped after %d cycles", e.cycles.Load())
	return nil
}

// Close stops streaming and releases everything in reverse order of
// acquisition: device, recording sink, converter, sample store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if err := e.stopLocked(); err != nil {
		errs = append(errs, err)
	}
	if e.dev != nil {
		if err := e.dev.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close: %w", ErrDevice, err))
		}
		e.dev = nil
	}
	if err := e.closeRecording(); err != nil {
		errs = append(errs, err)
	}
	if err := e.conv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("%w: close: %w", ErrConverter, err))
	}
	e.store.Release()
	return errors.Join(errs...)
}

func (e *Engine) closeRecording() error {
	if !e.tee.Enabled() {
		return nil
	}
	err := e.tee.Close()
	e.logRecording(false)
	return err
}

func (e *Engine) logRecording(on bool) {
	if on {
		e.logger.Printf("recording to %s", e.tee.Path())
		return
	}
	e.logger.Printf("recording stopped: %s, %d blocks written, %d dropped",
		e.tee.Path(), e.tee.Written(), e.tee.Dropped())
}
