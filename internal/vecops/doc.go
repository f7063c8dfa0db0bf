// Package vecops provides the elementwise vector primitives that the
// dsp/upols convolution kernel relies on: fill/copy/ramp, the add/sub/mul
// families, the fused multiply-add and multiply-const-add families, a
// gain-ramp primitive, and strided float/integer conversion.
//
// Every operation has a pure-Go reference implementation that is always
// available (see reference.go and complex.go), plus a concrete float64 and
// complex128 fast path (Dispatch) that can be backed by an optional SIMD
// plug-in at runtime, mirroring internal/vecmath's registry-based dispatch
// elsewhere in this module. The float64/complex128 instantiations of
// MulAddInPlaceC, MulConstAddInPlaceC, MulConstC and RampScale dispatch
// through Active() transparently, the same way internal/vecmath.Power
// resolves its own implementation without the caller opting in; Active()
// auto-selects the highest-priority registered back-end on first use, so
// nothing needs to call InitializeLibrary explicitly for the fast path to
// take effect.
package vecops

// Real is the set of floating-point sample types the reference
// implementations operate on.
type Real interface {
	~float32 | ~float64
}

// Cplx is the set of complex bin types the reference implementations
// operate on.
type Cplx interface {
	~complex64 | ~complex128
}
