// SPDX-License-Identifier: EPL-2.0

// Package audio holds the decoded-PCM building blocks: the Source stream
// interface, the decoder Registry, load-time conversion stages and the
// in-memory sample Store played by the engine.
//
// # Sources
//
// Every decoder in formats/ yields a Source of interleaved float32 samples in
// [-1, 1]. ReadSamples returns the number of values written, not frames, and
// io.EOF once the stream is finished:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    consume(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// # Sample Store
//
// Load drains a Source into a Store. The Store is immutable once built and is
// read without locks from the audio callback:
//
//	store, err := audio.Load(src, audio.WithSampleRate(48000), audio.WithMono())
//
// WithSampleRate inserts a cubic Resampler and WithMono a MonoMixer. Both run
// once, before playback starts.
package audio
