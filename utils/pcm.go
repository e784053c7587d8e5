// SPDX-License-Identifier: EPL-2.0

package utils

// FloatToPCM clamps x to [-1, 1] and scales it to a signed integer of the
// given bit depth. Positive full scale maps to the largest positive value to
// avoid overflow.
func FloatToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int(float64(x) * float64(PCMFullScale(bitDepth)-1))
}

// PCMToFloat scales a signed PCM integer of the given bit depth into [-1, 1).
func PCMToFloat(v int, bitDepth int) float32 {
	return float32(float64(v) / float64(PCMFullScale(bitDepth)))
}

// PCMFullScale returns 2^(bitDepth-1), the magnitude of the most negative
// sample. Unknown depths fall back to 16-bit.
func PCMFullScale(bitDepth int) int {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}
