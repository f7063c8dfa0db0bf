package kernel

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

func makeKernelTestSignal(n int) []float64 {
	rng := rand.New(rand.NewPCG(11, 0))
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = rng.Float64()*2 - 1
	}
	return sig
}

func TestTransformRoundTrip(t *testing.T) {
	for _, n := range []int{16, 64, 256} {
		tr, err := NewTransform[float64, complex128]("default", n)
		if err != nil {
			t.Fatalf("NewTransform(n=%d): %v", n, err)
		}

		x := makeKernelTestSignal(n)
		bins := make([]complex128, tr.Bins())
		if err := tr.Forward(bins, x); err != nil {
			t.Fatalf("Forward: %v", err)
		}

		out := make([]float64, n)
		if err := tr.Inverse(out, bins); err != nil {
			t.Fatalf("Inverse: %v", err)
		}

		scale := tr.ForwardScale() * tr.InverseScale() * float64(n)
		maxDiff := 0.0
		for i := range x {
			d := math.Abs(out[i] - scale*x[i])
			if d > maxDiff {
				maxDiff = d
			}
		}
		if maxDiff > 1e-9 {
			t.Errorf("n=%d: round trip max diff %e", n, maxDiff)
		}
	}
}

func TestTransformBinCount(t *testing.T) {
	tr, err := NewTransform[float64, complex128]("default", 32)
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}
	if tr.Bins() != 17 {
		t.Errorf("Bins() = %d, want 17", tr.Bins())
	}
	if tr.Size() != 32 {
		t.Errorf("Size() = %d, want 32", tr.Size())
	}
}

func TestTransformBackendAliases(t *testing.T) {
	for _, name := range []string{"default", "kissfft", "ffts"} {
		if _, err := NewTransform[float64, complex128](name, 32); err != nil {
			t.Errorf("NewTransform(%q): %v", name, err)
		}
	}
}

func TestTransformUnknownBackend(t *testing.T) {
	_, err := NewTransform[float64, complex128]("fftw", 32)
	if !upolserr.Is(err, upolserr.InvalidArgument) {
		t.Errorf("unknown backend: want InvalidArgument, got %v", err)
	}
}

func TestTransformInvalidSize(t *testing.T) {
	for _, n := range []int{0, -4, 7} {
		if _, err := NewTransform[float64, complex128]("default", n); !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("NewTransform(n=%d): want InvalidArgument, got %v", n, err)
		}
	}
}

func TestTransformFloat32RoundTrip(t *testing.T) {
	const n = 64
	tr, err := NewTransform[float32, complex64]("default", n)
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}

	src64 := makeKernelTestSignal(n)
	x := make([]float32, n)
	for i, v := range src64 {
		x[i] = float32(v)
	}

	bins := make([]complex64, tr.Bins())
	if err := tr.Forward(bins, x); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	out := make([]float32, n)
	if err := tr.Inverse(out, bins); err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	scale := tr.ForwardScale() * tr.InverseScale() * float32(n)
	maxDiff := float32(0)
	for i := range x {
		d := out[i] - scale*x[i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-4 {
		t.Errorf("float32 round trip max diff %e", maxDiff)
	}
}

func TestTransformLengthMismatch(t *testing.T) {
	tr, err := NewTransform[float64, complex128]("default", 16)
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}

	t.Run("ForwardBadInput", func(t *testing.T) {
		err := tr.Forward(make([]complex128, tr.Bins()), make([]float64, 8))
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})

	t.Run("ForwardBadOutput", func(t *testing.T) {
		err := tr.Forward(make([]complex128, 3), make([]float64, 16))
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})

	t.Run("InverseBadInput", func(t *testing.T) {
		err := tr.Inverse(make([]float64, 16), make([]complex128, 3))
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})

	t.Run("InverseBadOutput", func(t *testing.T) {
		err := tr.Inverse(make([]float64, 5), make([]complex128, tr.Bins()))
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})
}
