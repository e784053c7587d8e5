// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/mackenziestarr/eccojam/utils"
)

// Writer streams interleaved float32 blocks into an integer PCM WAV file.
// The RIFF sizes are patched on Close, so the destination must seek.
type Writer struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	bitDepth int
	channels int
	frames   int64
	closed   bool
}

// NewWriter writes the header for a file with the given layout.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrBadWriterFormat
	}
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Writer{
		enc: gowav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
		channels: channels,
	}, nil
}

// Write appends samples. A trailing partial frame is written as is; callers
// are expected to hand over whole frames.
func (w *Writer) Write(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, x := range samples {
		v := utils.FloatToPCM(x, w.bitDepth)
		if w.bitDepth == 8 {
			v += 128
		}
		w.buf.Data[i] = v
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("writing wav block: %w", err)
	}
	w.frames += int64(len(samples) / w.channels)
	return nil
}

// Frames is the number of whole frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close finalizes the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// Encode writes samples as a complete WAV file.
func Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int, samples []float32) error {
	wr, err := NewWriter(w, sampleRate, channels, bitDepth)
	if err != nil {
		return err
	}
	if err := wr.Write(samples); err != nil {
		_ = wr.Close()
		return err
	}
	return wr.Close()
}
