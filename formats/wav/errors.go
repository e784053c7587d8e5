// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedBitDepth = errors.New("bit depth must be 8, 16, 24 or 32")
	ErrNoPCMData           = errors.New("WAV file has no data chunk")
	ErrBadWriterFormat     = errors.New("invalid sample rate or channel count for WAV output")
	ErrWriterClosed        = errors.New("WAV writer is closed")
)
