// SPDX-License-Identifier: EPL-2.0

package eccojam

import (
	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/config"
	"github.com/mackenziestarr/eccojam/formats"
)

// LoadSource decodes the file at path into a Store, converting its rate and
// channel layout as s asks.
func LoadSource(path string, s config.Source) (*audio.Store, error) {
	return formats.LoadFile(formats.Default(), path, LoadOptions(s)...)
}

// LoadOptions translates the source settings into load options.
func LoadOptions(s config.Source) []audio.LoadOption {
	var opts []audio.LoadOption
	if s.SampleRate > 0 {
		opts = append(opts, audio.WithSampleRate(s.SampleRate))
	}
	if s.Mono {
		opts = append(opts, audio.WithMono())
	}
	if s.MaxFrames > 0 {
		opts = append(opts, audio.WithMaxFrames(s.MaxFrames))
	}
	return opts
}
