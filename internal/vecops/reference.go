package vecops

// Zero sets dst[i] = 0 for all i.
func Zero[R Real](dst []R) {
	for i := range dst {
		dst[i] = 0
	}
}

// Fill sets dst[i] = c for all i.
func Fill[R Real](c R, dst []R) {
	for i := range dst {
		dst[i] = c
	}
}

// Copy sets dst[i] = src[i]. Panics if lengths differ.
func Copy[R Real](dst, src []R) {
	mustEqualLen(len(dst), len(src))
	copy(dst, src)
}

// Ramp fills dst with a linear ramp from a to b.
//
// incA selects whether dst[0] is exactly a; incB selects whether dst[n-1]
// is exactly b. The number of segments is n+1 minus the number of
// endpoints included, and the step is (b-a)/segments.
func Ramp[R Real](dst []R, a, b R, incA, incB bool) {
	n := len(dst)
	if n == 0 {
		return
	}

	segments := n + 1
	if incA {
		segments--
	}
	if incB {
		segments--
	}
	if segments <= 0 {
		segments = 1
	}

	step := (b - a) / R(segments)

	cur := a
	if !incA {
		cur += step
	}
	for i := range dst {
		dst[i] = cur
		cur += step
	}
}

// Add computes y[i] = a[i] + b[i].
func Add[R Real](y, a, b []R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] = a[i] + b[i]
	}
}

// AddInPlace computes y[i] += a[i].
func AddInPlace[R Real](y, a []R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] += a[i]
	}
}

// AddConst computes y[i] = a[i] + c.
func AddConst[R Real](y, a []R, c R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] = a[i] + c
	}
}

// AddConstInPlace computes y[i] += c.
func AddConstInPlace[R Real](y []R, c R) {
	for i := range y {
		y[i] += c
	}
}

// Sub computes y[i] = a[i] - b[i].
func Sub[R Real](y, a, b []R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] = a[i] - b[i]
	}
}

// SubInPlace computes y[i] -= a[i].
func SubInPlace[R Real](y, a []R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] -= a[i]
	}
}

// SubConst computes y[i] = a[i] - c.
func SubConst[R Real](y, a []R, c R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] = a[i] - c
	}
}

// Mul computes y[i] = a[i] * b[i].
func Mul[R Real](y, a, b []R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] = a[i] * b[i]
	}
}

// MulInPlace computes y[i] *= a[i].
func MulInPlace[R Real](y, a []R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] *= a[i]
	}
}

// MulConst computes y[i] = c * a[i].
func MulConst[R Real](y, a []R, c R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] = c * a[i]
	}
}

// MulConstInPlace computes y[i] *= c.
func MulConstInPlace[R Real](y []R, c R) {
	for i := range y {
		y[i] *= c
	}
}

// MulAdd computes y[i] = x[i] + a[i]*b[i].
func MulAdd[R Real](y, a, b, x []R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	mustEqualLen(len(y), len(x))
	for i := range y {
		y[i] = x[i] + a[i]*b[i]
	}
}

// MulAddInPlace computes y[i] += a[i]*b[i].
func MulAddInPlace[R Real](y, a, b []R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] += a[i] * b[i]
	}
}

// MulConstAdd computes y[i] = x[i] + c*a[i].
func MulConstAdd[R Real](y, a, x []R, c R) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(x))
	for i := range y {
		y[i] = x[i] + c*a[i]
	}
}

// MulConstAddInPlace computes y[i] += c*a[i].
func MulConstAddInPlace[R Real](y, a []R, c R) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] += c * a[i]
	}
}

// RampScale computes, for each sample k: y[k] = (optionally +y[k]) +
// (g0 + (g1-g0)*r[k]) * in[k]. r is typically a slice of a precomputed
// 0..1 ramp (see dsp/upols/fader).
//
// Dispatches through Active() when R is float64, the same way
// internal/vecmath.Power resolves its implementation inside the
// function itself rather than asking the caller to look one up; other
// instantiations (e.g. the float32 kernel path) use the loop below.
// referenceDispatch installs rampScaleLoop directly, not this function,
// so selecting the reference backend doesn't recurse back into Active().
func RampScale[R Real](y, in, r []R, g0, g1 R, accumulate bool) {
	mustEqualLen(len(y), len(in))
	mustEqualLen(len(y), len(r))
	if yc, ok := any(y).([]float64); ok {
		inc := any(in).([]float64)
		rc := any(r).([]float64)
		Active().RampScale(yc, inc, rc, float64(g0), float64(g1), accumulate)
		return
	}
	rampScaleLoop(y, in, r, g0, g1, accumulate)
}

func rampScaleLoop[R Real](y, in, r []R, g0, g1 R, accumulate bool) {
	span := g1 - g0
	for i := range y {
		gain := g0 + span*r[i]
		if accumulate {
			y[i] += gain * in[i]
		} else {
			y[i] = gain * in[i]
		}
	}
}

func mustEqualLen(a, b int) {
	if a != b {
		panic("vecops: slice length mismatch")
	}
}
