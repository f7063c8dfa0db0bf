package vecops

import algovecmath "github.com/cwbudde/algo-vecmath"

// init registers algo-vecmath as a higher-priority real-valued back-end.
// algo-vecmath's confirmed public surface (as used by dsp/window and
// dsp/spectrum elsewhere in this module) is MulBlock/MulBlockInPlace plus
// Magnitude/Power; it has no complex primitive, so the complex-bin
// accumulation ops (MulAddInPlaceC and friends, the FDL*filter
// accumulation the kernel spends most of its time in) stay on the
// reference implementation even when this back-end is selected. Wiring
// MulBlockInPlace here exercises algo-vecmath for the fader's per-sample
// gain multiply, reached through RampScale's Active() dispatch from
// dsp/upols/fader.
func init() {
	Register(Backend{
		Name:     "algo-vecmath",
		Priority: 10,
		Build:    buildAlgoVecmathDispatch,
	})
}

// buildAlgoVecmathDispatch overrides RampScale with one backed by
// algo-vecmath's MulBlockInPlace. gain and scaled are scratch buffers
// closed over by the returned Dispatch and grown on demand rather than
// reallocated every call, the same steady-state-no-allocation discipline
// dsp/upols/crossfade's Process keeps for its own scratch slices.
func buildAlgoVecmathDispatch() Dispatch {
	d := referenceDispatch()
	d.Name = "algo-vecmath"

	var gain, scaled []float64

	d.RampScale = func(y, in, r []float64, g0, g1 float64, accumulate bool) {
		n := len(r)
		if cap(gain) < n {
			gain = make([]float64, n)
			scaled = make([]float64, n)
		}
		gain = gain[:n]
		scaled = scaled[:n]

		Fill(g0, gain)
		MulConstAddInPlace(gain, r, g1-g0)

		copy(scaled, in)
		algovecmath.MulBlockInPlace(scaled, gain)

		if !accumulate {
			copy(y, scaled)
			return
		}
		for i := range y {
			y[i] += scaled[i]
		}
	}

	return d
}
