package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

func makeCoreTestSignal(n int) []float64 {
	rng := rand.New(rand.NewPCG(101, 0))
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = rng.Float64()*2 - 1
	}
	return sig
}

func makeCoreTestKernel(n int) []float64 {
	k := make([]float64, n)
	k[0] = 1.0
	for i := 1; i < n; i++ {
		k[i] = k[i-1] * 0.95
	}
	return k
}

// runSingleRoute feeds signal through a freshly built core, one
// blockLength-sample block at a time, routing input 0 through filterIdx
// into output 0 with unity gain, and returns the concatenated output.
func runSingleRoute(t *testing.T, kernel []float64, signal []float64, blockLength, maxFilterLen int) []float64 {
	t.Helper()

	c, err := NewCore[float64, complex128](1, 1, blockLength, maxFilterLen, 1, [][]float64{kernel}, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}

	numBlocks := len(signal) / blockLength
	out := make([]float64, 0, numBlocks*blockLength)
	outBins := make([]complex128, c.DFTBins())
	outTime := make([]float64, blockLength)

	for b := 0; b < numBlocks; b++ {
		block := signal[b*blockLength : (b+1)*blockLength]
		if err := c.ProcessInputs([][]float64{block}); err != nil {
			t.Fatalf("ProcessInputs: %v", err)
		}
		if err := c.ProcessFilter(0, 0, 1.0, outBins, false); err != nil {
			t.Fatalf("ProcessFilter: %v", err)
		}
		if err := c.TransformOutput(outBins, outTime); err != nil {
			t.Fatalf("TransformOutput: %v", err)
		}
		out = append(out, outTime...)
	}
	return out
}

func TestCoreMatchesDirectConvolution(t *testing.T) {
	tests := []struct {
		name         string
		kernelLen    int
		signalLen    int
		blockLength  int
		maxFilterLen int
	}{
		{"kernel32_block16", 32, 256, 16, 32},
		{"kernel100_block32_padded", 100, 512, 32, 128},
		{"kernel256_block64", 256, 1024, 64, 256},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kernel := makeCoreTestKernel(tc.kernelLen)
			signal := makeCoreTestSignal(tc.signalLen)

			got := runSingleRoute(t, kernel, signal, tc.blockLength, tc.maxFilterLen)

			want, err := conv.Direct(signal, kernel)
			if err != nil {
				t.Fatalf("conv.Direct: %v", err)
			}

			compareLen := min(len(got), len(signal))
			maxDiff := 0.0
			for i := 0; i < compareLen; i++ {
				d := math.Abs(got[i] - want[i])
				if d > maxDiff {
					maxDiff = d
				}
			}
			if maxDiff > 1e-9 {
				t.Errorf("max diff vs direct convolution: %e", maxDiff)
			}
		})
	}
}

func TestCoreProcessFilterAccumulate(t *testing.T) {
	const blockLength = 16
	kernelA := makeCoreTestKernel(32)
	kernelB := makeCoreTestKernel(24)
	signal := makeCoreTestSignal(128)

	c, err := NewCore[float64, complex128](1, 1, blockLength, 64, 2, [][]float64{kernelA, kernelB}, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}

	numBlocks := len(signal) / blockLength
	sumOut := make([]float64, 0, numBlocks*blockLength)
	outBins := make([]complex128, c.DFTBins())
	outTime := make([]float64, blockLength)

	for b := 0; b < numBlocks; b++ {
		block := signal[b*blockLength : (b+1)*blockLength]
		if err := c.ProcessInputs([][]float64{block}); err != nil {
			t.Fatalf("ProcessInputs: %v", err)
		}
		if err := c.ProcessFilter(0, 0, 1.0, outBins, false); err != nil {
			t.Fatalf("ProcessFilter(0): %v", err)
		}
		if err := c.ProcessFilter(0, 1, 1.0, outBins, true); err != nil {
			t.Fatalf("ProcessFilter(1): %v", err)
		}
		if err := c.TransformOutput(outBins, outTime); err != nil {
			t.Fatalf("TransformOutput: %v", err)
		}
		sumOut = append(sumOut, outTime...)
	}

	wantA, err := conv.Direct(signal, kernelA)
	if err != nil {
		t.Fatalf("conv.Direct A: %v", err)
	}
	wantB, err := conv.Direct(signal, kernelB)
	if err != nil {
		t.Fatalf("conv.Direct B: %v", err)
	}

	compareLen := min(len(sumOut), len(signal))
	maxDiff := 0.0
	for i := 0; i < compareLen; i++ {
		want := wantA[i] + wantB[i]
		d := math.Abs(sumOut[i] - want)
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-9 {
		t.Errorf("accumulated process_filter max diff: %e", maxDiff)
	}
}

func TestCoreGain(t *testing.T) {
	const blockLength = 16
	kernel := makeCoreTestKernel(32)
	signal := makeCoreTestSignal(64)

	unity := runSingleRouteGain(t, kernel, signal, blockLength, 32, 1.0)
	half := runSingleRouteGain(t, kernel, signal, blockLength, 32, 0.5)

	for i := range unity {
		want := unity[i] * 0.5
		if math.Abs(half[i]-want) > 1e-9 {
			t.Errorf("sample %d: gain=0.5 output %v, want %v", i, half[i], want)
		}
	}
}

func runSingleRouteGain(t *testing.T, kernel, signal []float64, blockLength, maxFilterLen int, gain float64) []float64 {
	t.Helper()
	c, err := NewCore[float64, complex128](1, 1, blockLength, maxFilterLen, 1, [][]float64{kernel}, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}

	numBlocks := len(signal) / blockLength
	out := make([]float64, 0, numBlocks*blockLength)
	outBins := make([]complex128, c.DFTBins())
	outTime := make([]float64, blockLength)

	for b := 0; b < numBlocks; b++ {
		block := signal[b*blockLength : (b+1)*blockLength]
		if err := c.ProcessInputs([][]float64{block}); err != nil {
			t.Fatalf("ProcessInputs: %v", err)
		}
		if err := c.ProcessFilter(0, 0, gain, outBins, false); err != nil {
			t.Fatalf("ProcessFilter: %v", err)
		}
		if err := c.TransformOutput(outBins, outTime); err != nil {
			t.Fatalf("TransformOutput: %v", err)
		}
		out = append(out, outTime...)
	}
	return out
}

func TestCoreClearFilters(t *testing.T) {
	const blockLength = 16
	kernel := makeCoreTestKernel(32)
	signal := makeCoreTestSignal(64)

	c, err := NewCore[float64, complex128](1, 1, blockLength, 32, 1, [][]float64{kernel}, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	c.ClearFilters()

	outBins := make([]complex128, c.DFTBins())
	outTime := make([]float64, blockLength)
	if err := c.ProcessInputs([][]float64{signal[:blockLength]}); err != nil {
		t.Fatalf("ProcessInputs: %v", err)
	}
	if err := c.ProcessFilter(0, 0, 1.0, outBins, false); err != nil {
		t.Fatalf("ProcessFilter: %v", err)
	}
	if err := c.TransformOutput(outBins, outTime); err != nil {
		t.Fatalf("TransformOutput: %v", err)
	}
	for i, v := range outTime {
		if v != 0 {
			t.Errorf("after ClearFilters, outTime[%d] = %v, want 0", i, v)
		}
	}
}

func TestCoreSetFilterBulkCopy(t *testing.T) {
	const blockLength = 16
	kernel := makeCoreTestKernel(32)
	signal := makeCoreTestSignal(64)

	src, err := NewCore[float64, complex128](1, 1, blockLength, 32, 1, [][]float64{kernel}, 8, "default")
	if err != nil {
		t.Fatalf("NewCore(src): %v", err)
	}
	dst, err := NewCore[float64, complex128](1, 1, blockLength, 32, 1, nil, 8, "default")
	if err != nil {
		t.Fatalf("NewCore(dst): %v", err)
	}

	freqDomain := make([][]complex128, src.NumPartitions())
	for p := range freqDomain {
		part, err := src.GetFilterPartition(0, p)
		if err != nil {
			t.Fatalf("GetFilterPartition(%d): %v", p, err)
		}
		freqDomain[p] = append([]complex128(nil), part...)
	}
	if err := dst.SetFilter(freqDomain, 0); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}

	outA := runWithCore(t, src, signal, blockLength)
	outB := runWithCore(t, dst, signal, blockLength)

	for i := range outA {
		if math.Abs(outA[i]-outB[i]) > 1e-12 {
			t.Errorf("sample %d: src=%v dst=%v", i, outA[i], outB[i])
		}
	}
}

func runWithCore(t *testing.T, c *CoreConvolverUniformT[float64, complex128], signal []float64, blockLength int) []float64 {
	t.Helper()
	numBlocks := len(signal) / blockLength
	out := make([]float64, 0, numBlocks*blockLength)
	outBins := make([]complex128, c.DFTBins())
	outTime := make([]float64, blockLength)
	for b := 0; b < numBlocks; b++ {
		block := signal[b*blockLength : (b+1)*blockLength]
		if err := c.ProcessInputs([][]float64{block}); err != nil {
			t.Fatalf("ProcessInputs: %v", err)
		}
		if err := c.ProcessFilter(0, 0, 1.0, outBins, false); err != nil {
			t.Fatalf("ProcessFilter: %v", err)
		}
		if err := c.TransformOutput(outBins, outTime); err != nil {
			t.Fatalf("TransformOutput: %v", err)
		}
		out = append(out, outTime...)
	}
	return out
}

func TestCoreConstructorErrors(t *testing.T) {
	cases := []struct {
		name                             string
		numInputs, numOutputs, blockLen  int
		maxFilterLen, maxFilters         int
	}{
		{"ZeroInputs", 0, 1, 16, 32, 1},
		{"ZeroOutputs", 1, 0, 16, 32, 1},
		{"ZeroBlockLength", 1, 1, 0, 32, 1},
		{"ZeroMaxFilterLen", 1, 1, 16, 0, 1},
		{"ZeroMaxFilters", 1, 1, 16, 32, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCore[float64, complex128](tc.numInputs, tc.numOutputs, tc.blockLen, tc.maxFilterLen, tc.maxFilters, nil, 8, "default")
			if !upolserr.Is(err, upolserr.InvalidArgument) {
				t.Errorf("want InvalidArgument, got %v", err)
			}
		})
	}
}

func TestCoreInitFiltersErrors(t *testing.T) {
	c, err := NewCore[float64, complex128](1, 1, 16, 32, 1, nil, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}

	t.Run("TooManyRows", func(t *testing.T) {
		err := c.InitFilters([][]float64{{1}, {1}})
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})

	t.Run("RowTooLong", func(t *testing.T) {
		err := c.InitFilters([][]float64{make([]float64, 33)})
		if !upolserr.Is(err, upolserr.InvalidArgument) {
			t.Errorf("want InvalidArgument, got %v", err)
		}
	})
}

func TestCoreIndexOutOfRangeErrors(t *testing.T) {
	c, err := NewCore[float64, complex128](1, 1, 16, 32, 1, nil, 8, "default")
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	outBins := make([]complex128, c.DFTBins())

	if err := c.ProcessFilter(1, 0, 1.0, outBins, false); !upolserr.Is(err, upolserr.InvalidArgument) {
		t.Errorf("ProcessFilter bad inIdx: want InvalidArgument, got %v", err)
	}
	if err := c.ProcessFilter(0, 1, 1.0, outBins, false); !upolserr.Is(err, upolserr.InvalidArgument) {
		t.Errorf("ProcessFilter bad filterIdx: want InvalidArgument, got %v", err)
	}
	if _, err := c.GetFDLBlock(1, 0); !upolserr.Is(err, upolserr.InvalidArgument) {
		t.Errorf("GetFDLBlock bad inIdx: want InvalidArgument, got %v", err)
	}
	if _, err := c.GetFilterPartition(1, 0); !upolserr.Is(err, upolserr.InvalidArgument) {
		t.Errorf("GetFilterPartition bad filterIdx: want InvalidArgument, got %v", err)
	}
}
