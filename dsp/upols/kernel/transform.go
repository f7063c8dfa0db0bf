// Package kernel provides the real-to-complex FFT wrapper the UPOLS core
// transforms input blocks and filter partitions through. It builds the
// half-spectrum contract (N real samples in, N/2+1 complex bins out) on
// top of algofft's full-complex Plan, the same FFT engine dsp/conv uses
// for its own partitioned convolution stages, since no native
// real-to-complex half-spectrum API is exposed by that package.
package kernel

import (
	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

// Float is the set of sample types a Transform can operate over.
type Float interface {
	~float32 | ~float64
}

// Cplx is the set of complex bin types a Transform can operate over. A
// Transform[F, C] pairs F=float32 with C=complex64 and F=float64 with
// C=complex128; NewTransform rejects any other pairing.
type Cplx interface {
	~complex64 | ~complex128
}

// Transform is a real-to-complex FFT of a fixed size N. Forward consumes
// N real samples and produces N/2+1 complex bins; Inverse is its
// pseudo-inverse taking N/2+1 bins back to N real samples.
//
// ForwardScale and InverseScale report the backend's normalization
// convention: Inverse(Forward(x)) == ForwardScale()*InverseScale()*N*x
// for any real x of length N.
type Transform[F Float, C Cplx] interface {
	Forward(dst []C, src []F) error
	Inverse(dst []F, src []C) error
	ForwardScale() F
	InverseScale() F
	Size() int
	Bins() int
}

// NewTransform builds a Transform of size n (n must be even and > 0) from
// the named backend. "default" resolves to algofft's plan directly;
// "kissfft" and "ffts" are accepted as aliases of "default" since no
// alternate FFT backend is linked into this module (see DESIGN.md).
// Unknown names return an InvalidArgument error.
func NewTransform[F Float, C Cplx](name string, n int) (Transform[F, C], error) {
	if n <= 0 || n%2 != 0 {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "kernel: transform size must be a positive even number, got %d", n)
	}
	switch name {
	case "default", "kissfft", "ffts":
	default:
		return nil, upolserr.Newf(upolserr.InvalidArgument, "kernel: unknown FFT backend %q", name)
	}

	var zeroF F
	var zeroC C
	switch any(zeroC).(type) {
	case complex128:
		if _, ok := any(zeroF).(float64); !ok {
			return nil, upolserr.New(upolserr.InvalidArgument, "kernel: complex128 transform requires float64 samples")
		}
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, upolserr.Wrap(upolserr.LogicError, "kernel: failed to build FFT plan", err)
		}
		return any(&transform64{n: n, plan: plan}).(Transform[F, C]), nil
	case complex64:
		if _, ok := any(zeroF).(float32); !ok {
			return nil, upolserr.New(upolserr.InvalidArgument, "kernel: complex64 transform requires float32 samples")
		}
		plan, err := algofft.NewPlan32(n)
		if err != nil {
			return nil, upolserr.Wrap(upolserr.LogicError, "kernel: failed to build FFT plan", err)
		}
		return any(&transform32{n: n, plan: plan}).(Transform[F, C]), nil
	default:
		return nil, upolserr.Newf(upolserr.InvalidArgument, "kernel: unsupported complex bin type %T", zeroC)
	}
}

// transform64 implements Transform[float64, complex128].
type transform64 struct {
	n    int
	plan *algofft.Plan[complex128]
	full []complex128 // scratch: N complex samples for the full FFT
}

func (t *transform64) bins() int { return t.n/2 + 1 }

func (t *transform64) Size() int { return t.n }
func (t *transform64) Bins() int { return t.bins() }

func (t *transform64) Forward(dst []complex128, src []float64) error {
	if len(src) != t.n {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: forward input length %d, want %d", len(src), t.n)
	}
	if len(dst) != t.bins() {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: forward output length %d, want %d", len(dst), t.bins())
	}
	if len(t.full) != t.n {
		t.full = make([]complex128, t.n)
	}
	for i, v := range src {
		t.full[i] = complex(v, 0)
	}
	if err := t.plan.Forward(t.full, t.full); err != nil {
		return upolserr.Wrap(upolserr.ArithmeticError, "kernel: forward FFT failed", err)
	}
	copy(dst, t.full[:t.bins()])
	return nil
}

func (t *transform64) Inverse(dst []float64, src []complex128) error {
	if len(src) != t.bins() {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: inverse input length %d, want %d", len(src), t.bins())
	}
	if len(dst) != t.n {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: inverse output length %d, want %d", len(dst), t.n)
	}
	if len(t.full) != t.n {
		t.full = make([]complex128, t.n)
	}
	copy(t.full, src)
	// Rebuild the upper half from Hermitian symmetry: X[N-k] = conj(X[k]).
	for k := 1; k < t.n-t.bins()+1; k++ {
		t.full[t.n-k] = complexConj128(src[k])
	}
	if err := t.plan.Inverse(t.full, t.full); err != nil {
		return upolserr.Wrap(upolserr.ArithmeticError, "kernel: inverse FFT failed", err)
	}
	for i := range dst {
		dst[i] = real(t.full[i])
	}
	return nil
}

func (t *transform64) ForwardScale() float64 { return 1 }
func (t *transform64) InverseScale() float64 { return 1 / float64(t.n) }

// transform32 implements Transform[float32, complex64].
type transform32 struct {
	n    int
	plan *algofft.Plan[complex64]
	full []complex64
}

func (t *transform32) bins() int { return t.n/2 + 1 }

func (t *transform32) Size() int { return t.n }
func (t *transform32) Bins() int { return t.bins() }

func (t *transform32) Forward(dst []complex64, src []float32) error {
	if len(src) != t.n {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: forward input length %d, want %d", len(src), t.n)
	}
	if len(dst) != t.bins() {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: forward output length %d, want %d", len(dst), t.bins())
	}
	if len(t.full) != t.n {
		t.full = make([]complex64, t.n)
	}
	for i, v := range src {
		t.full[i] = complex(v, 0)
	}
	if err := t.plan.Forward(t.full, t.full); err != nil {
		return upolserr.Wrap(upolserr.ArithmeticError, "kernel: forward FFT failed", err)
	}
	copy(dst, t.full[:t.bins()])
	return nil
}

func (t *transform32) Inverse(dst []float32, src []complex64) error {
	if len(src) != t.bins() {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: inverse input length %d, want %d", len(src), t.bins())
	}
	if len(dst) != t.n {
		return upolserr.Newf(upolserr.InvalidArgument, "kernel: inverse output length %d, want %d", len(dst), t.n)
	}
	if len(t.full) != t.n {
		t.full = make([]complex64, t.n)
	}
	copy(t.full, src)
	for k := 1; k < t.n-t.bins()+1; k++ {
		t.full[t.n-k] = complexConj64(src[k])
	}
	if err := t.plan.Inverse(t.full, t.full); err != nil {
		return upolserr.Wrap(upolserr.ArithmeticError, "kernel: inverse FFT failed", err)
	}
	for i := range dst {
		dst[i] = real(t.full[i])
	}
	return nil
}

func (t *transform32) ForwardScale() float32 { return 1 }
func (t *transform32) InverseScale() float32 { return 1 / float32(t.n) }

func complexConj128(c complex128) complex128 { return complex(real(c), -imag(c)) }
func complexConj64(c complex64) complex64    { return complex(real(c), -imag(c)) }
