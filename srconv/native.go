// SPDX-License-Identifier: EPL-2.0

package srconv

// Half widths of the sinc kernels, in input frames.
var sincHalfWidth = map[Algorithm]int{
	SincBest:    64,
	SincMedium:  32,
	SincFastest: 8,
}

// native is the pure Go converter. Sinc variants run with a latency of
// half frames so they never need input beyond the block they are given;
// the hold and linear variants have no latency.
type native struct {
	alg      Algorithm
	channels int
	half     int
	kernel   *kernel
	weights  []float32

	// hist holds the frames preceding the next input block, oldest first.
	histLen int
	hist    []float32

	// pos is where the next output frame falls, in input frames from the
	// start of the next block.
	pos float64

	closed bool
}

func newNative(alg Algorithm, channels int) *native {
	n := &native{
		alg:      alg,
		channels: channels,
	}

	if half, ok := sincHalfWidth[alg]; ok {
		n.half = half
		n.kernel = newKernel(half)
		n.weights = make([]float32, 2*half)
		n.histLen = 2*half - 1
		n.hist = make([]float32, n.histLen*channels)
	}
	return n
}

func (n *native) Process(d *Data) error {
	if n.closed {
		return ErrClosed
	}
	if err := d.Validate(n.channels); err != nil {
		return err
	}

	if n.kernel != nil {
		n.kernel.tune(min(1, d.Ratio))
	}

	step := 1 / d.Ratio
	ch := n.channels
	gen := 0

	for gen < d.OutputFrames {
		i := int(n.pos)
		frac := n.pos - float64(i)
		if !n.ready(d, i, frac) {
			break
		}

		out := d.Out[gen*ch : (gen+1)*ch]
		switch n.alg {
		case ZeroOrderHold:
			for c := range out {
				out[c] = n.sample(d, i, c)
			}
		case Linear:
			for c := range out {
				a := n.sample(d, i, c)
				if frac > 0 {
					a += (n.sample(d, i+1, c) - a) * float32(frac)
				}
				out[c] = a
			}
		default:
			n.convolve(d, i, frac, out)
		}

		gen++
		n.pos += step
	}

	used := min(int(n.pos), d.InputFrames)
	n.pos -= float64(used)
	n.keep(d.In, used)

	d.InputFramesUsed = used
	d.OutputFramesGen = gen
	return nil
}

// ready reports whether every input frame the next output depends on is
// available.
func (n *native) ready(d *Data, i int, frac float64) bool {
	switch {
	case n.half > 0:
		if d.EndOfInput {
			return i-n.half < d.InputFrames
		}
		return i < d.InputFrames
	case n.alg == Linear && frac > 0 && !d.EndOfInput:
		return i+1 < d.InputFrames
	default:
		return i < d.InputFrames
	}
}

// sample returns channel c of frame k, where negative k reaches into the
// history and frames past the block read as silence.
func (n *native) sample(d *Data, k, c int) float32 {
	switch {
	case k < 0:
		return n.hist[(n.histLen+k)*n.channels+c]
	case k < d.InputFrames:
		return d.In[k*n.channels+c]
	default:
		return 0
	}
}

// convolve evaluates the sinc output centered half frames behind i+frac.
// Taps cover frames i-2*half+1 .. i.
func (n *native) convolve(d *Data, i int, frac float64, out []float32) {
	base := i - 2*n.half + 1
	x0 := frac + float64(n.half-1)

	var sum float32
	for j := range n.weights {
		w := n.kernel.at(x0 - float64(j))
		n.weights[j] = w
		sum += w
	}
	// Unity gain at DC
	if sum != 0 {
		inv := 1 / sum
		for j := range n.weights {
			n.weights[j] *= inv
		}
	}

	for c := range out {
		var acc float32
		for j, w := range n.weights {
			acc += w * n.sample(d, base+j, c)
		}
		out[c] = acc
	}
}

// keep slides the history window past the first used frames of in.
func (n *native) keep(in []float32, used int) {
	if n.histLen == 0 || used == 0 {
		return
	}

	ch := n.channels
	if used >= n.histLen {
		copy(n.hist, in[(used-n.histLen)*ch:used*ch])
		return
	}
	copy(n.hist, n.hist[used*ch:])
	copy(n.hist[(n.histLen-used)*ch:], in[:used*ch])
}

func (n *native) Reset() error {
	if n.closed {
		return ErrClosed
	}
	clear(n.hist)
	n.pos = 0
	return nil
}

func (n *native) Close() error {
	n.closed = true
	return nil
}
