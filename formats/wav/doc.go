// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// The Decoder accepts 8, 16, 24 and 32-bit PCM with any channel count and
// reports the container width through BitDepth. The Writer is the other
// half: it streams float32 blocks into a file of a fixed layout and is what
// the recorder uses to capture the engine output.
//
//	f, _ := os.Create("take.wav")
//	w, err := wav.NewWriter(f, 44100, 2, 16)
//	if err != nil {
//	    return err
//	}
//	_ = w.Write(block)
//	_ = w.Close()
//	_ = f.Close()
package wav
