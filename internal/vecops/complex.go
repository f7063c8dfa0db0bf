package vecops

// ZeroC sets dst[i] = 0 for all i.
func ZeroC[C Cplx](dst []C) {
	for i := range dst {
		dst[i] = 0
	}
}

// FillC sets dst[i] = c for all i.
func FillC[C Cplx](c C, dst []C) {
	for i := range dst {
		dst[i] = c
	}
}

// CopyC sets dst[i] = src[i]. Panics if lengths differ.
func CopyC[C Cplx](dst, src []C) {
	mustEqualLen(len(dst), len(src))
	copy(dst, src)
}

// AddC computes y[i] = a[i] + b[i].
func AddC[C Cplx](y, a, b []C) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] = a[i] + b[i]
	}
}

// AddInPlaceC computes y[i] += a[i].
func AddInPlaceC[C Cplx](y, a []C) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] += a[i]
	}
}

// MulC computes the complex-complex product y[i] = a[i] * b[i].
func MulC[C Cplx](y, a, b []C) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	for i := range y {
		y[i] = a[i] * b[i]
	}
}

// MulInPlaceC computes y[i] *= a[i].
func MulInPlaceC[C Cplx](y, a []C) {
	mustEqualLen(len(y), len(a))
	for i := range y {
		y[i] *= a[i]
	}
}

// MulConstC computes y[i] = c * a[i], where c is a (possibly complex)
// scalar already expressed in type C. Callers scaling by a real gain
// construct c with a zero imaginary part.
//
// When C is complex128 this transparently runs through Active(), the
// same way internal/vecmath.Power dispatches without requiring its
// caller to opt in; every other instantiation of C uses the loop below.
// referenceDispatch installs mulConstCLoop directly, not this function,
// so the reference backend itself never bounces back through Active().
func MulConstC[C Cplx](y, a []C, c C) {
	mustEqualLen(len(y), len(a))
	if yc, ok := any(y).([]complex128); ok {
		ac := any(a).([]complex128)
		cc := any(c).(complex128)
		Active().MulConstC(yc, ac, cc)
		return
	}
	mulConstCLoop(y, a, c)
}

func mulConstCLoop[C Cplx](y, a []C, c C) {
	for i := range y {
		y[i] = c * a[i]
	}
}

// MulConstInPlaceC computes y[i] *= c.
func MulConstInPlaceC[C Cplx](y []C, c C) {
	for i := range y {
		y[i] *= c
	}
}

// MulAddC computes y[i] = x[i] + a[i]*b[i].
func MulAddC[C Cplx](y, a, b, x []C) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	mustEqualLen(len(y), len(x))
	for i := range y {
		y[i] = x[i] + a[i]*b[i]
	}
}

// MulAddInPlaceC computes y[i] += a[i]*b[i]. This is the core
// accumulate-over-partitions primitive the UPOLS kernel relies on.
//
// Dispatches through Active() when C is complex128, the kernel's
// double-precision bin type; other instantiations use the loop below.
// referenceDispatch installs mulAddInPlaceCLoop directly so selecting
// the reference backend doesn't recurse back into Active().
func MulAddInPlaceC[C Cplx](y, a, b []C) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(b))
	if yc, ok := any(y).([]complex128); ok {
		ac := any(a).([]complex128)
		bc := any(b).([]complex128)
		Active().MulAddInPlaceC(yc, ac, bc)
		return
	}
	mulAddInPlaceCLoop(y, a, b)
}

func mulAddInPlaceCLoop[C Cplx](y, a, b []C) {
	for i := range y {
		y[i] += a[i] * b[i]
	}
}

// MulConstAddC computes y[i] = x[i] + c*a[i].
func MulConstAddC[C Cplx](y, a, x []C, c C) {
	mustEqualLen(len(y), len(a))
	mustEqualLen(len(y), len(x))
	for i := range y {
		y[i] = x[i] + c*a[i]
	}
}

// MulConstAddInPlaceC computes y[i] += c*a[i].
//
// Dispatches through Active() when C is complex128; other instantiations
// use the loop below. referenceDispatch installs mulConstAddInPlaceCLoop
// directly so the reference backend doesn't recurse back into Active().
func MulConstAddInPlaceC[C Cplx](y, a []C, c C) {
	mustEqualLen(len(y), len(a))
	if yc, ok := any(y).([]complex128); ok {
		ac := any(a).([]complex128)
		cc := any(c).(complex128)
		Active().MulConstAddInPlaceC(yc, ac, cc)
		return
	}
	mulConstAddInPlaceCLoop(y, a, c)
}

func mulConstAddInPlaceCLoop[C Cplx](y, a []C, c C) {
	for i := range y {
		y[i] += c * a[i]
	}
}
