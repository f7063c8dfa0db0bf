// Package interp implements the interpolating convolver (spec §4.8): a
// crossfade.Convolver plus an auxiliary store of frequency-domain
// filters, blended on demand into a route's next filter by a weighted
// sum rather than ever being forward-transformed from a time-domain
// impulse response itself.
//
// Grounded on dsp/filter/bank's named-slot filter store, combined with
// dsp/interp's weighted-combination helpers generalized from scalar
// sample interpolation to whole frequency-domain filter interpolation.
package interp

import (
	"github.com/cwbudde/algo-dsp/dsp/upols/crossfade"
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
	"github.com/cwbudde/algo-dsp/internal/vecops"
)

// Interpolant names the filters and weights making up one route's next
// interpolated filter: weight[i] applies to the filter stored at
// slots[indices[i]].
type Interpolant[F kernel.Float] struct {
	RouteIdx int
	Indices  []int
	Weights  []F
}

// Convolver wraps a crossfade.Convolver with an auxiliary bank of
// frequency-domain filters, addressed independently of the crossfade
// layer's own low/high physical slots.
type Convolver[F kernel.Float, C kernel.Cplx] struct {
	inner      *crossfade.Convolver[F, C]
	maxFilters int
	numPart    int
	dftBins    int

	slots []storedFilter[C] // [maxFilters][numPart][dftBins]
	tmp   [][]C             // [numPart][dftBins] scratch for the weighted sum
}

type storedFilter[C kernel.Cplx] struct {
	parts [][]C
}

// NewConvolver wraps inner with an auxiliary filter store of maxFilters
// slots, each holding inner.Core().NumPartitions() partitions of
// inner.Core().DFTBins() complex bins.
func NewConvolver[F kernel.Float, C kernel.Cplx](inner *crossfade.Convolver[F, C], maxFilters int) (*Convolver[F, C], error) {
	if inner == nil {
		return nil, upolserr.New(upolserr.InvalidArgument, "interp: inner convolver must not be nil")
	}
	if maxFilters <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "interp: maxFilters must be > 0")
	}

	numPart := inner.Core().NumPartitions()
	dftBins := inner.Core().DFTBins()

	slots := make([]storedFilter[C], maxFilters)
	for i := range slots {
		parts := make([][]C, numPart)
		for p := range parts {
			parts[p] = make([]C, dftBins)
		}
		slots[i] = storedFilter[C]{parts: parts}
	}

	tmp := make([][]C, numPart)
	for p := range tmp {
		tmp[p] = make([]C, dftBins)
	}

	return &Convolver[F, C]{
		inner:      inner,
		maxFilters: maxFilters,
		numPart:    numPart,
		dftBins:    dftBins,
		slots:      slots,
		tmp:        tmp,
	}, nil
}

// Core returns the underlying convolution core, for diagnostics.
func (c *Convolver[F, C]) Core() *crossfade.Convolver[F, C] { return c.inner }

// MaxFilters returns the auxiliary filter store's slot count.
func (c *Convolver[F, C]) MaxFilters() int { return c.maxFilters }

// SetFilterSlot transforms ir into slotIdx's auxiliary frequency-domain
// store (not a route's live filter — use SetInterpolant to promote a
// weighted combination of stored filters into a route).
func (c *Convolver[F, C]) SetFilterSlot(ir []F, slotIdx int) error {
	if err := c.checkSlotIdx(slotIdx); err != nil {
		return err
	}
	parts, err := c.inner.Core().TransformImpulseResponse(ir)
	if err != nil {
		return err
	}
	for p, part := range parts {
		copy(c.slots[slotIdx].parts[p], part)
	}
	return nil
}

func (c *Convolver[F, C]) checkSlotIdx(slotIdx int) error {
	if slotIdx < 0 || slotIdx >= c.maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "interp: filter slot %d out of range", slotIdx)
	}
	return nil
}

// SetInterpolant computes tmp_bins = sum_i weights[i] * slots[indices[i]]
// and hands it to the underlying cross-fading convolver as the next
// filter for interp.RouteIdx.
func (c *Convolver[F, C]) SetInterpolant(in Interpolant[F], startTransition bool) error {
	k := len(in.Indices)
	if len(in.Weights) != k {
		return upolserr.New(upolserr.InvalidArgument, "interp: indices and weights length mismatch")
	}
	if k == 0 {
		return upolserr.New(upolserr.InvalidArgument, "interp: interpolant must name at least one filter")
	}
	for _, idx := range in.Indices {
		if err := c.checkSlotIdx(idx); err != nil {
			return err
		}
	}

	for p := 0; p < c.numPart; p++ {
		w0 := realScalar[F, C](in.Weights[0])
		vecops.MulConstC(c.tmp[p], c.slots[in.Indices[0]].parts[p], w0)
		for i := 1; i < k; i++ {
			wi := realScalar[F, C](in.Weights[i])
			vecops.MulConstAddInPlaceC(c.tmp[p], c.slots[in.Indices[i]].parts[p], wi)
		}
	}

	if err := c.inner.SetTransformedFilter(c.tmp, in.RouteIdx, startTransition); err != nil {
		return err
	}
	return nil
}

// SetInterpolants applies each interpolant in list in order. No implicit
// clearing happens between calls.
func (c *Convolver[F, C]) SetInterpolants(list []Interpolant[F], startTransition bool) error {
	for _, in := range list {
		if err := c.SetInterpolant(in, startTransition); err != nil {
			return err
		}
	}
	return nil
}

// ClearInterpolants zeros every route's live filter bank in the
// underlying cross-fading convolver, via an all-zero single-filter
// interpolant routed to each output.
func (c *Convolver[F, C]) ClearInterpolants() error {
	zeroParts := make([][]C, c.numPart)
	for p := range zeroParts {
		zeroParts[p] = make([]C, c.dftBins)
	}
	for r := 0; r < c.inner.NumOutputs(); r++ {
		if err := c.inner.SetTransformedFilter(zeroParts, r, true); err != nil {
			return err
		}
	}
	return nil
}

// realScalar constructs the complex scalar with zero imaginary part
// corresponding to a real weight w, mirroring dsp/upols/core's own
// realScalar (unexported there, so duplicated rather than exported
// purely for this one call site).
func realScalar[F kernel.Float, C kernel.Cplx](w F) C {
	var zero C
	switch any(zero).(type) {
	case complex128:
		return any(complex(float64(w), 0)).(C)
	default:
		return any(complex(float32(w), 0)).(C)
	}
}
