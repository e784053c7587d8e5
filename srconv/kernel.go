// SPDX-License-Identifier: EPL-2.0

package srconv

import "math"

// Points per unit of the sinc table.
const kernelResolution = 128

// kernel is a tabulated Blackman-windowed sinc, symmetric around zero and
// half frames wide on each side.
type kernel struct {
	half   int
	cutoff float64
	tbl    []float32
}

func newKernel(half int) *kernel {
	k := &kernel{
		half: half,
		tbl:  make([]float32, half*kernelResolution+2),
	}
	k.tune(1)
	return k
}

// tune rebuilds the table for a cutoff relative to the input Nyquist.
// It only does work when the cutoff changes.
func (k *kernel) tune(cutoff float64) {
	if cutoff == k.cutoff {
		return
	}
	k.cutoff = cutoff

	last := len(k.tbl) - 1
	for j := range last {
		x := float64(j) / kernelResolution
		k.tbl[j] = float32(cutoff * sinc(cutoff*x) * blackman(x/float64(k.half)))
	}
	k.tbl[last] = 0
}

// at returns the kernel value at offset x, interpolating between entries.
func (k *kernel) at(x float64) float32 {
	x = math.Abs(x) * kernelResolution
	j := int(x)
	if j >= len(k.tbl)-1 {
		return 0
	}
	f := float32(x - float64(j))
	return k.tbl[j] + (k.tbl[j+1]-k.tbl[j])*f
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// blackman is the Blackman window over u in [-1, 1].
func blackman(u float64) float64 {
	if u < -1 || u > 1 {
		return 0
	}
	return 0.42 + 0.5*math.Cos(math.Pi*u) + 0.08*math.Cos(2*math.Pi*u)
}
