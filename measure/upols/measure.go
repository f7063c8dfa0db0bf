// Package upols provides reusable checks for the §8 testable properties
// of the dsp/upols convolution engine (linearity, unity gain, routing
// sparsity, cross-fade endpoints, interpolation consistency), so the
// engine's own tests and any host integration test can call the same
// property checks instead of reimplementing them.
//
// Grounded on internal/testutil's *testing.T-driven tolerance helpers
// (RequireSliceNearlyEqual, RequireFinite): these checks follow the same
// shape — call t.Helper(), then t.Errorf per violating sample rather
// than returning a value for the caller to inspect.
package upols

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/upols/core"
	"github.com/cwbudde/algo-dsp/dsp/upols/crossfade"
	"github.com/cwbudde/algo-dsp/dsp/upols/interp"
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
)

// Processor is the minimal block-convolver contract these checks drive.
// dsp/upols/routing.Convolver, dsp/upols/crossfade.Convolver and
// dsp/upols/interp.Convolver (via its Core()) all satisfy it.
type Processor[F kernel.Float] interface {
	Process(input, output [][]F) error
	BlockLength() int
}

// RunBlocks drives proc over x (each row a multiple of proc.BlockLength()
// samples) one block at a time and returns the concatenated,
// numOutputs-row output.
func RunBlocks[F kernel.Float](t *testing.T, proc Processor[F], x [][]F, numOutputs int) [][]F {
	t.Helper()
	if len(x) == 0 {
		t.Fatalf("measure: x must have at least one input row")
	}
	blockLength := proc.BlockLength()
	n := len(x[0])
	if blockLength <= 0 || n%blockLength != 0 {
		t.Fatalf("measure: input length %d must be a positive multiple of block length %d", n, blockLength)
	}

	out := make([][]F, numOutputs)
	for ch := range out {
		out[ch] = make([]F, n)
	}
	inBlock := make([][]F, len(x))
	outBlock := make([][]F, numOutputs)
	for ch := range outBlock {
		outBlock[ch] = make([]F, blockLength)
	}

	for b := 0; b*blockLength < n; b++ {
		lo, hi := b*blockLength, (b+1)*blockLength
		for ch := range inBlock {
			inBlock[ch] = x[ch][lo:hi]
		}
		if err := proc.Process(inBlock, outBlock); err != nil {
			t.Fatalf("measure: Process: %v", err)
		}
		for ch := range out {
			copy(out[ch][lo:hi], outBlock[ch])
		}
	}
	return out
}

func absDiff[F kernel.Float](a, b F) float64 {
	return math.Abs(float64(a - b))
}

// CheckLinearity verifies spec property 2: y(a*x1+b*x2) equals
// a*y(x1)+b*y(x2) within eps. newProc must return a fresh instance with
// identical configuration and zeroed state on each call, since the three
// runs cannot share a single convolver's delay-line history.
func CheckLinearity[F kernel.Float](t *testing.T, newProc func() Processor[F], x1, x2 [][]F, a, b F, numOutputs int, eps float64) {
	t.Helper()

	combined := make([][]F, len(x1))
	for ch := range combined {
		combined[ch] = make([]F, len(x1[ch]))
		for i := range combined[ch] {
			combined[ch][i] = a*x1[ch][i] + b*x2[ch][i]
		}
	}

	y1 := RunBlocks(t, newProc(), x1, numOutputs)
	y2 := RunBlocks(t, newProc(), x2, numOutputs)
	y3 := RunBlocks(t, newProc(), combined, numOutputs)

	for ch := range y3 {
		for i := range y3[ch] {
			want := a*y1[ch][i] + b*y2[ch][i]
			if diff := absDiff(y3[ch][i], want); diff > eps {
				t.Errorf("linearity: channel %d sample %d: got %v, want %v (diff %v > eps %v)", ch, i, y3[ch][i], want, diff, eps)
			}
		}
	}
}

// CheckUnityGain verifies spec property 4: with a single unit-impulse
// filter routed at gain 1.0, the output reproduces the input exactly,
// offset by the FDL's one-block warm-up latency (spec scenario E1).
func CheckUnityGain[F kernel.Float](t *testing.T, proc Processor[F], x []F, eps float64) {
	t.Helper()
	blockLength := proc.BlockLength()
	out := RunBlocks(t, proc, [][]F{x}, 1)[0]
	for i := blockLength; i < len(x); i++ {
		if diff := absDiff(out[i], x[i-blockLength]); diff > eps {
			t.Errorf("unity gain: sample %d: got %v, want %v (diff %v > eps %v)", i, out[i], x[i-blockLength], diff, eps)
		}
	}
}

// CheckOutputIsZero verifies spec property 5: an output channel with no
// routing entries is exactly zero regardless of input.
func CheckOutputIsZero[F kernel.Float](t *testing.T, out []F) {
	t.Helper()
	for i, v := range out {
		if v != 0 {
			t.Errorf("routing sparsity: sample %d = %v, want 0", i, v)
		}
	}
}

// CheckCrossfadeEndpoint verifies spec property 6. c's route routeIdx
// must already be settled on a known filter (its "from" bank); this call
// uploads filterB as the new target and checks that the very next block
// equals expectFirst (the caller-computed ramp-weighted blend of "from"
// and "to" output at the start of the transition) and that after
// TransitionBlocks() more calls with probe, the output settles to
// expectLast (pure filterB output, the transition's endpoint).
func CheckCrossfadeEndpoint[F kernel.Float, C kernel.Cplx](t *testing.T, c *crossfade.Convolver[F, C], routeIdx int, filterB, probe, expectFirst, expectLast []F, eps float64) {
	t.Helper()
	if err := c.SetImpulseResponse(filterB, routeIdx, true); err != nil {
		t.Fatalf("measure: SetImpulseResponse: %v", err)
	}

	out := make([]F, c.BlockLength())
	if err := c.Process([][]F{probe}, [][]F{out}); err != nil {
		t.Fatalf("measure: Process: %v", err)
	}
	for i := range expectFirst {
		if diff := absDiff(out[i], expectFirst[i]); diff > eps {
			t.Errorf("cross-fade endpoint (block 0): sample %d: got %v, want %v (diff %v > eps %v)", i, out[i], expectFirst[i], diff, eps)
		}
	}

	for b := 1; b < c.TransitionBlocks(); b++ {
		if err := c.Process([][]F{probe}, [][]F{out}); err != nil {
			t.Fatalf("measure: Process: %v", err)
		}
	}
	if c.TransitionBlocks() > 0 {
		if err := c.Process([][]F{probe}, [][]F{out}); err != nil {
			t.Fatalf("measure: Process: %v", err)
		}
	}
	for i := range expectLast {
		if diff := absDiff(out[i], expectLast[i]); diff > eps {
			t.Errorf("cross-fade endpoint (block %d): sample %d: got %v, want %v (diff %v > eps %v)", c.TransitionBlocks(), i, out[i], expectLast[i], diff, eps)
		}
	}
}

// CheckInterpolationIdentity verifies spec property 7's degenerate case:
// a single-index interpolant with weight 1 reproduces that filter's
// output exactly (within eps), by comparing against expectOutput — the
// caller-computed convolution of filter with probe.
func CheckInterpolationIdentity[F kernel.Float, C kernel.Cplx](t *testing.T, conv *interp.Convolver[F, C], slotIdx, routeIdx int, filter, probe, expectOutput []F, eps float64) {
	t.Helper()
	if err := conv.SetFilterSlot(filter, slotIdx); err != nil {
		t.Fatalf("measure: SetFilterSlot: %v", err)
	}
	in := interp.Interpolant[F]{RouteIdx: routeIdx, Indices: []int{slotIdx}, Weights: []F{1}}
	if err := conv.SetInterpolant(in, true); err != nil {
		t.Fatalf("measure: SetInterpolant: %v", err)
	}

	out := RunBlocks(t, conv.Core(), [][]F{probe}, 1)[0]
	for i := range expectOutput {
		if diff := absDiff(out[i], expectOutput[i]); diff > eps {
			t.Errorf("interpolation identity: sample %d: got %v, want %v (diff %v > eps %v)", i, out[i], expectOutput[i], diff, eps)
		}
	}
}

// CheckTransformDeterministic verifies the round-trip/idempotence
// property that TransformImpulseResponse is a pure function of ir: two
// calls with the same ir produce bit-identical frequency-domain
// partitions.
func CheckTransformDeterministic[F kernel.Float, C kernel.Cplx](t *testing.T, c *core.CoreConvolverUniformT[F, C], ir []F) {
	t.Helper()
	a, err := c.TransformImpulseResponse(ir)
	if err != nil {
		t.Fatalf("measure: TransformImpulseResponse: %v", err)
	}
	b, err := c.TransformImpulseResponse(ir)
	if err != nil {
		t.Fatalf("measure: TransformImpulseResponse: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("measure: partition count changed between calls: %d vs %d", len(a), len(b))
	}
	for p := range a {
		if len(a[p]) != len(b[p]) {
			t.Fatalf("measure: partition %d bin count changed: %d vs %d", p, len(a[p]), len(b[p]))
		}
		for i := range a[p] {
			if a[p][i] != b[p][i] {
				t.Errorf("measure: partition %d bin %d not deterministic: %v vs %v", p, i, a[p][i], b[p][i])
			}
		}
	}
}
