// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"fmt"
	"os"

	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/formats/aiff"
	"github.com/mackenziestarr/eccojam/formats/mp3"
	"github.com/mackenziestarr/eccojam/formats/vorbis"
	"github.com/mackenziestarr/eccojam/formats/wav"
)

// Default returns a registry keyed by file extension.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	return r
}

// LoadFile decodes path completely into a Store. The decoder is picked by
// extension.
func LoadFile(r *audio.Registry, path string, opts ...audio.LoadOption) (*audio.Store, error) {
	dec, err := r.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer src.Close()

	store, err := audio.Load(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return store, nil
}
