// Package crossfade implements the twin-bank cross-fading convolver
// (spec §4.7): every logical route gets two physical filter slots and
// two physical output channels in an underlying routing.Convolver, and
// this layer blends between them with a shared linear ramp whenever a
// route's filter is replaced.
//
// Each route owns a dedicated physical output pair rather than fanning
// multiple routes into one output the way dsp/upols/routing allows —
// see DESIGN.md for why that simplification was made here.
package crossfade

import (
	"github.com/cwbudde/algo-dsp/dsp/upols/core"
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
	"github.com/cwbudde/algo-dsp/dsp/upols/routing"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

// routeState tracks one logical route's cross-fade progress.
// primaryIsLow selects which physical bank currently plays the
// fade-out ("from") role; it flips at most once per settled period,
// lazily, the next time a new filter targets this route — see
// Convolver.upload.
type routeState[F kernel.Float] struct {
	inIdx                int
	gain                 F
	transitionBlockIndex int
	primaryIsLow         bool
}

// Convolver is a cross-fading convolver: one logical route per output
// channel, each backed by a low/high physical bank pair.
type Convolver[F kernel.Float, C kernel.Cplx] struct {
	inner            *routing.Convolver[F, C]
	numOutputs       int
	blockLength      int
	transitionBlocks int
	fadeIn, fadeOut  []F

	routes []routeState[F]

	lowOut, highOut [][]F // scratch, one blockLength row per output
	innerOutput     [][]F // lowOut/highOut interleaved into inner's 2*numOutputs rows
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func buildRamp[F kernel.Float](transitionSamples, transitionBlocks, blockLength int) []F {
	n := (transitionBlocks + 1) * blockLength
	ramp := make([]F, n)
	for i := range ramp {
		if transitionSamples <= 0 || i >= transitionSamples {
			ramp[i] = 1
			continue
		}
		ramp[i] = F(i) / F(transitionSamples)
	}
	return ramp
}

// NewConvolver builds a cross-fading convolver with one route per
// output channel. transitionSamples is the length of the linear
// cross-fade applied whenever a route's filter changes; 0 means an
// instantaneous switch.
func NewConvolver[F kernel.Float, C kernel.Cplx](
	numInputs, numOutputs, blockLength, maxFilterLen int,
	transitionSamples int,
	alignment int,
	fftBackend string,
) (*Convolver[F, C], error) {
	if numOutputs <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "crossfade: numOutputs must be > 0")
	}
	if transitionSamples < 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "crossfade: transitionSamples must be >= 0")
	}

	c, err := core.NewCore[F, C](numInputs, 2*numOutputs, blockLength, maxFilterLen, 2*numOutputs, nil, alignment, fftBackend)
	if err != nil {
		return nil, err
	}
	rc, err := routing.NewConvolver(c, 2*numOutputs)
	if err != nil {
		return nil, err
	}

	transitionBlocks := ceilDiv(transitionSamples, blockLength)
	fadeIn := buildRamp[F](transitionSamples, transitionBlocks, blockLength)
	fadeOut := make([]F, len(fadeIn))
	for i, v := range fadeIn {
		fadeOut[i] = 1 - v
	}

	routes := make([]routeState[F], numOutputs)
	lowOut := make([][]F, numOutputs)
	highOut := make([][]F, numOutputs)
	for r := range routes {
		routes[r] = routeState[F]{inIdx: -1, primaryIsLow: true, transitionBlockIndex: transitionBlocks}
		lowOut[r] = make([]F, blockLength)
		highOut[r] = make([]F, blockLength)
	}

	innerOutput := make([][]F, 2*numOutputs)
	for r := 0; r < numOutputs; r++ {
		innerOutput[r] = lowOut[r]
		innerOutput[r+numOutputs] = highOut[r]
	}

	return &Convolver[F, C]{
		inner:            rc,
		numOutputs:       numOutputs,
		blockLength:      blockLength,
		transitionBlocks: transitionBlocks,
		fadeIn:           fadeIn,
		fadeOut:          fadeOut,
		routes:           routes,
		lowOut:           lowOut,
		highOut:          highOut,
		innerOutput:      innerOutput,
	}, nil
}

func (c *Convolver[F, C]) slotLow(routeIdx int) int  { return routeIdx }
func (c *Convolver[F, C]) slotHigh(routeIdx int) int { return routeIdx + c.numOutputs }

func (c *Convolver[F, C]) checkRouteIdx(routeIdx int) error {
	if routeIdx < 0 || routeIdx >= c.numOutputs {
		return upolserr.Newf(upolserr.InvalidArgument, "crossfade: route index %d out of range", routeIdx)
	}
	return nil
}

// Core returns the doubled-bank convolution core, for diagnostics.
func (c *Convolver[F, C]) Core() *core.CoreConvolverUniformT[F, C] { return c.inner.Core() }

// NumOutputs returns the number of logical (non-doubled) output channels.
func (c *Convolver[F, C]) NumOutputs() int { return c.numOutputs }

// BlockLength returns the configured block size in samples.
func (c *Convolver[F, C]) BlockLength() int { return c.blockLength }

// TransitionBlocks returns P_tb, the number of process() calls a
// cross-fade spans.
func (c *Convolver[F, C]) TransitionBlocks() int { return c.transitionBlocks }

// SetRoute assigns input channel inIdx and gain to routeIdx's output.
// Safe to call again later to re-route an already-configured route to
// a different input; its cross-fade state is untouched.
func (c *Convolver[F, C]) SetRoute(routeIdx, inIdx int, gain F) error {
	if err := c.checkRouteIdx(routeIdx); err != nil {
		return err
	}
	numInputs := c.inner.Core().NumInputs()
	numOutputsInner := c.inner.Core().NumOutputs()
	maxFilters := c.inner.Core().MaxFilters()

	rs := &c.routes[routeIdx]
	if rs.inIdx >= 0 {
		c.inner.Table().RemoveEntry(rs.inIdx, routeIdx)
		c.inner.Table().RemoveEntry(rs.inIdx, routeIdx+c.numOutputs)
	}

	if err := c.inner.Table().SetEntry(inIdx, routeIdx, c.slotLow(routeIdx), gain, numInputs, numOutputsInner, maxFilters); err != nil {
		return err
	}
	if err := c.inner.Table().SetEntry(inIdx, routeIdx+c.numOutputs, c.slotHigh(routeIdx), gain, numInputs, numOutputsInner, maxFilters); err != nil {
		return err
	}

	rs.inIdx = inIdx
	rs.gain = gain
	return nil
}

// upload toggles the route's primary/secondary labelling (once per
// settled period) and returns the physical filter slot the next filter
// upload should target.
func (c *Convolver[F, C]) upload(routeIdx int) int {
	rs := &c.routes[routeIdx]
	if rs.transitionBlockIndex >= c.transitionBlocks {
		rs.primaryIsLow = !rs.primaryIsLow
	}
	if rs.primaryIsLow {
		return c.slotHigh(routeIdx)
	}
	return c.slotLow(routeIdx)
}

// SetImpulseResponse uploads ir into routeIdx's dormant bank. If
// startTransition is true the route's cross-fade counter restarts at 0,
// so the next Process() call begins blending towards ir.
func (c *Convolver[F, C]) SetImpulseResponse(ir []F, routeIdx int, startTransition bool) error {
	if err := c.checkRouteIdx(routeIdx); err != nil {
		return err
	}
	target := c.upload(routeIdx)
	if err := c.inner.Core().SetImpulseResponse(ir, target); err != nil {
		return err
	}
	if startTransition {
		c.routes[routeIdx].transitionBlockIndex = 0
	}
	return nil
}

// SetTransformedFilter uploads an already frequency-domain-transformed
// filter (numPartitions rows of dftBinsPadded complex bins) into
// routeIdx's dormant bank. Used by dsp/upols/interp, whose interpolated
// filters never exist in the time domain.
func (c *Convolver[F, C]) SetTransformedFilter(freqDomain [][]C, routeIdx int, startTransition bool) error {
	if err := c.checkRouteIdx(routeIdx); err != nil {
		return err
	}
	target := c.upload(routeIdx)
	if err := c.inner.Core().SetFilter(freqDomain, target); err != nil {
		return err
	}
	if startTransition {
		c.routes[routeIdx].transitionBlockIndex = 0
	}
	return nil
}

// Process feeds one block of input through every route's primary and
// secondary convolution, cross-fades the two per route, and writes the
// blended result to output. input has NumInputs() rows; output has
// NumOutputs() rows; every row is BlockLength() samples.
func (c *Convolver[F, C]) Process(input, output [][]F) error {
	if len(output) != c.numOutputs {
		return upolserr.Newf(upolserr.InvalidArgument, "crossfade: expected %d output channels, got %d", c.numOutputs, len(output))
	}
	for o, row := range output {
		if len(row) != c.blockLength {
			return upolserr.Newf(upolserr.InvalidArgument, "crossfade: output channel %d length %d, want %d", o, len(row), c.blockLength)
		}
	}

	if err := c.inner.Process(input, c.innerOutput); err != nil {
		return err
	}

	for r := 0; r < c.numOutputs; r++ {
		rs := &c.routes[r]
		k := rs.transitionBlockIndex
		if k > c.transitionBlocks {
			k = c.transitionBlocks
		}
		base := k * c.blockLength
		fo := c.fadeOut[base : base+c.blockLength]
		fi := c.fadeIn[base : base+c.blockLength]

		from, to := c.lowOut[r], c.highOut[r]
		if !rs.primaryIsLow {
			from, to = c.highOut[r], c.lowOut[r]
		}

		out := output[r]
		for i := 0; i < c.blockLength; i++ {
			out[i] = fo[i]*from[i] + fi[i]*to[i]
		}

		if rs.transitionBlockIndex < c.transitionBlocks {
			rs.transitionBlockIndex++
		}
	}

	return nil
}
