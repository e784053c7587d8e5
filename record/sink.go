// SPDX-License-Identifier: EPL-2.0

package record

import (
	"errors"
	"fmt"
	"os"

	"github.com/mackenziestarr/eccojam/formats/wav"
)

// Format is fixed for the life of a recording and matches the sample store.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrBadFormat, f.SampleRate, f.Channels)
	}
	return nil
}

// Sink receives recorded blocks. It is only used from the writer goroutine.
type Sink interface {
	Write(block []float32) error
	Close() error
}

// Opener creates the sink for one recording.
type Opener interface {
	Open(path string, f Format) (Sink, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string, f Format) (Sink, error)

func (fn OpenerFunc) Open(path string, f Format) (Sink, error) { return fn(path, f) }

// WAVOpener records into integer PCM WAV files at the format's bit depth.
type WAVOpener struct{}

func (WAVOpener) Open(path string, f Format) (Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	w, err := wav.NewWriter(file, f.SampleRate, f.Channels, f.BitDepth)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return &wavSink{file: file, w: w}, nil
}

type wavSink struct {
	file *os.File
	w    *wav.Writer
}

func (s *wavSink) Write(block []float32) error {
	return s.w.Write(block)
}

func (s *wavSink) Close() error {
	return errors.Join(s.w.Close(), s.file.Close())
}
