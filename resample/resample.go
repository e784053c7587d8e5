// SPDX-License-Identifier: EPL-2.0

// Package resample turns a stream of frames into fixed size blocks at a
// variable playback ratio.
//
// Each cycle pulls floor(block/ratio) frames from the source, offers them to
// the converter together with one look-ahead frame and asks for exactly one
// block of output. Input the converter leaves unused is dropped: the next
// cycle starts wherever the source is.
package resample

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mackenziestarr/eccojam/srconv"
)

var (
	ErrBadLayout = errors.New("channels and block size must be positive")
	ErrBadRatio  = errors.New("ratio outside the range the buffers were sized for")
	ErrConverter = errors.New("rate converter failed")
)

// FrameSource yields one interleaved frame per call. Peek must return the
// frame the next Next call would produce, without side effects.
type FrameSource interface {
	Next(dst []float32)
	Peek(dst []float32)
}

type Adapter struct {
	src      FrameSource
	conv     srconv.Converter
	channels int
	block    int
	minRatio float64
	maxRatio float64

	in   []float32
	out  []float32
	data srconv.Data

	shortfalls atomic.Uint64
}

// New sizes every buffer for the smallest ratio the adapter will be driven
// at, so Process never allocates.
func New(src FrameSource, conv srconv.Converter, channels, framesPerBuffer int, minRatio float64) (*Adapter, error) {
	if channels < 1 || framesPerBuffer < 1 {
		return nil, ErrBadLayout
	}
	if minRatio < srconv.MinRatio || minRatio > srconv.MaxRatio {
		return nil, fmt.Errorf("%w: minimum %v", ErrBadRatio, minRatio)
	}

	a := &Adapter{
		src:      src,
		conv:     conv,
		channels: channels,
		block:    framesPerBuffer,
		minRatio: minRatio,
		maxRatio: srconv.MaxRatio,
	}
	a.in = make([]float32, MaxInputFrames(framesPerBuffer, minRatio)*channels)
	a.out = make([]float32, framesPerBuffer*channels)
	return a, nil
}

// InputFrames is how many source frames one cycle consumes at ratio,
// floor(block/ratio).
func (a *Adapter) InputFrames(ratio float64) int {
	return inputFrames(a.block, ratio)
}

// MaxInputFrames is the largest input a converter is handed per cycle when
// driven no slower than minRatio, look-ahead frame included.
func MaxInputFrames(framesPerBuffer int, minRatio float64) int {
	return inputFrames(framesPerBuffer, minRatio) + 1
}

// The epsilon keeps decimal ratios such as 0.2, which are slightly above
// their value in binary, from flooring one frame short.
func inputFrames(block int, ratio float64) int {
	return int(float64(block)/ratio + 1e-9)
}

// BlockFrames is the fixed number of frames Process returns.
func (a *Adapter) BlockFrames() int { return a.block }

// Process produces one block. The returned slice is reused by the next call.
// A converter error is returned wrapped in ErrConverter; the converter must
// not be used again after that.
func (a *Adapter) Process(ratio float64) ([]float32, error) {
	if ratio < a.minRatio || ratio > a.maxRatio {
		return nil, fmt.Errorf("%w: %v", ErrBadRatio, ratio)
	}

	ch := a.channels
	n := a.InputFrames(ratio)
	for i := range n {
		a.src.Next(a.in[i*ch : (i+1)*ch])
	}
	a.src.Peek(a.in[n*ch : (n+1)*ch])

	a.data = srconv.Data{
		In:           a.in,
		InputFrames:  n + 1,
		Out:          a.out,
		OutputFrames: a.block,
		Ratio:        ratio,
	}
	if err := a.conv.Process(&a.data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConverter, err)
	}

	if gen := a.data.OutputFramesGen; gen < a.block {
		a.shortfalls.Add(1)
		a.hold(gen)
	}
	return a.out, nil
}

// hold pads the block after gen frames by repeating the last generated
// frame, or with silence when nothing was generated.
func (a *Adapter) hold(gen int) {
	ch := a.channels
	if gen == 0 {
		clear(a.out)
		return
	}
	last := a.out[(gen-1)*ch : gen*ch]
	for f := gen; f < a.block; f++ {
		copy(a.out[f*ch:(f+1)*ch], last)
	}
}

// Shortfalls counts cycles where the converter returned less than a block.
func (a *Adapter) Shortfalls() uint64 { return a.shortfalls.Load() }

// Reset clears converter history.
func (a *Adapter) Reset() error {
	if err := a.conv.Reset(); err != nil {
		return fmt.Errorf("%w: %w", ErrConverter, err)
	}
	return nil
}
