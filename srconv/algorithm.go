// SPDX-License-Identifier: EPL-2.0

package srconv

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm selects the interpolation method. The numbering matches
// libsamplerate's converter types.
type Algorithm int

const (
	SincBest Algorithm = iota
	SincMedium
	SincFastest
	ZeroOrderHold
	Linear
)

var algorithmNames = [...]string{
	SincBest:      "sinc-best",
	SincMedium:    "sinc-medium",
	SincFastest:   "sinc-fastest",
	ZeroOrderHold: "zero-order-hold",
	Linear:        "linear",
}

var algorithmDescriptions = [...]string{
	SincBest:      "Band limited sinc interpolation, best quality, 97dB SNR, 96% BW.",
	SincMedium:    "Band limited sinc interpolation, medium quality, 97dB SNR, 90% BW.",
	SincFastest:   "Band limited sinc interpolation, fastest, 97dB SNR, 80% BW.",
	ZeroOrderHold: "Zero order hold interpolator, very fast, poor quality.",
	Linear:        "Linear interpolator, very fast, poor quality.",
}

// Algorithms lists every algorithm in numeric order.
func Algorithms() []Algorithm {
	return []Algorithm{SincBest, SincMedium, SincFastest, ZeroOrderHold, Linear}
}

func (a Algorithm) Valid() bool {
	return a >= SincBest && a <= Linear
}

func (a Algorithm) String() string {
	if !a.Valid() {
		return "algorithm(" + strconv.Itoa(int(a)) + ")"
	}
	return algorithmNames[a]
}

// Description is the one-line summary shown when choosing an algorithm.
func (a Algorithm) Description() string {
	if !a.Valid() {
		return ""
	}
	return algorithmDescriptions[a]
}

// ParseAlgorithm accepts a name such as "sinc-best" or its index "0".."4".
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(s); err == nil {
		if a := Algorithm(n); a.Valid() {
			return a, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}

	s = strings.ReplaceAll(s, "_", "-")
	for i, name := range algorithmNames {
		if s == name {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}
