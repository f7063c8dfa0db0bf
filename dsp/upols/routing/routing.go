// Package routing wires the otherwise routing-agnostic
// dsp/upols/core.CoreConvolverUniformT into a multichannel convolver: a
// sparse table of (input, output, filter, gain) routes, fanned in per
// output channel.
//
// The sparse-table shape is grounded on
// dsp/effects/spatial/crosstalk_simulator_hrtf.go's per-path routing
// (four fixed stereo paths, each with its own impulse response), scaled
// from a fixed struct of named paths to an arbitrary, mutable set of
// routes addressed by (input, output) identity.
package routing

import (
	"sort"

	"github.com/cwbudde/algo-dsp/dsp/upols/core"
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

// Entry is one routing assignment: input channel InIdx feeds output
// channel OutIdx through filter FilterIdx, scaled by Gain.
type Entry[F kernel.Float] struct {
	InIdx, OutIdx, FilterIdx int
	Gain                     F
}

// Table is a sparse, ordered set of routing Entry values. Entries are
// kept sorted by (OutIdx, InIdx) for iteration, with (InIdx, OutIdx) as
// the identity key: inserting over an existing (InIdx, OutIdx) replaces
// the previous entry in place.
type Table[F kernel.Float] struct {
	entries     []Entry[F]
	maxRoutings int
}

func newTable[F kernel.Float](maxRoutings int) Table[F] {
	return Table[F]{maxRoutings: maxRoutings}
}

func less[F kernel.Float](a, b Entry[F]) bool {
	if a.OutIdx != b.OutIdx {
		return a.OutIdx < b.OutIdx
	}
	return a.InIdx < b.InIdx
}

func (t *Table[F]) find(inIdx, outIdx int) int {
	for i, e := range t.entries {
		if e.InIdx == inIdx && e.OutIdx == outIdx {
			return i
		}
	}
	return -1
}

// Len returns the number of routing entries currently stored.
func (t *Table[F]) Len() int { return len(t.entries) }

// Entries returns the routing table's entries in (OutIdx, InIdx) order.
// The returned slice must not be mutated by the caller.
func (t *Table[F]) Entries() []Entry[F] { return t.entries }

// Clear removes every routing entry.
func (t *Table[F]) Clear() { t.entries = t.entries[:0] }

// Init replaces the entire table with list, validated as a unit: if any
// entry is invalid or len(list) exceeds the table's maxRoutings, the
// table is left unchanged.
func (t *Table[F]) Init(list []Entry[F], numInputs, numOutputs, maxFilters int) error {
	if len(list) > t.maxRoutings {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: %d entries exceeds max %d", len(list), t.maxRoutings)
	}
	next := make([]Entry[F], len(list))
	copy(next, list)
	for _, e := range next {
		if err := validateEntry(e, numInputs, numOutputs, maxFilters); err != nil {
			return err
		}
	}
	sort.Slice(next, func(i, j int) bool { return less(next[i], next[j]) })
	t.entries = next
	return nil
}

// SetEntry inserts or replaces the routing entry for (inIdx, outIdx).
func (t *Table[F]) SetEntry(inIdx, outIdx, filterIdx int, gain F, numInputs, numOutputs, maxFilters int) error {
	e := Entry[F]{InIdx: inIdx, OutIdx: outIdx, FilterIdx: filterIdx, Gain: gain}
	if err := validateEntry(e, numInputs, numOutputs, maxFilters); err != nil {
		return err
	}

	if idx := t.find(inIdx, outIdx); idx >= 0 {
		t.entries[idx] = e
		return nil
	}

	if len(t.entries) >= t.maxRoutings {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: table full (max %d routings)", t.maxRoutings)
	}
	t.entries = append(t.entries, e)
	sort.Slice(t.entries, func(i, j int) bool { return less(t.entries[i], t.entries[j]) })
	return nil
}

// RemoveEntry deletes the routing entry for (inIdx, outIdx), if any.
func (t *Table[F]) RemoveEntry(inIdx, outIdx int) {
	idx := t.find(inIdx, outIdx)
	if idx < 0 {
		return
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
}

func validateEntry[F kernel.Float](e Entry[F], numInputs, numOutputs, maxFilters int) error {
	if e.InIdx < 0 || e.InIdx >= numInputs {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: input index %d out of range", e.InIdx)
	}
	if e.OutIdx < 0 || e.OutIdx >= numOutputs {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: output index %d out of range", e.OutIdx)
	}
	if e.FilterIdx < 0 || e.FilterIdx >= maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: filter index %d out of range", e.FilterIdx)
	}
	return nil
}

// Convolver wires a Table to a core.CoreConvolverUniformT, summing every
// route's contribution per output channel each block.
type Convolver[F kernel.Float, C kernel.Cplx] struct {
	core  *core.CoreConvolverUniformT[F, C]
	table Table[F]
	acc   []C
}

// NewConvolver wraps an existing core with an empty routing table
// allowing up to maxRoutings entries.
func NewConvolver[F kernel.Float, C kernel.Cplx](c *core.CoreConvolverUniformT[F, C], maxRoutings int) (*Convolver[F, C], error) {
	if c == nil {
		return nil, upolserr.New(upolserr.InvalidArgument, "routing: core must not be nil")
	}
	if maxRoutings <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "routing: maxRoutings must be > 0")
	}
	return &Convolver[F, C]{
		core:  c,
		table: newTable[F](maxRoutings),
		acc:   make([]C, c.DFTBins()),
	}, nil
}

// Core returns the wrapped convolution core.
func (mc *Convolver[F, C]) Core() *core.CoreConvolverUniformT[F, C] { return mc.core }

// Table returns the routing table, mutable in place via its own methods.
func (mc *Convolver[F, C]) Table() *Table[F] { return &mc.table }

// BlockLength returns the configured block size in samples.
func (mc *Convolver[F, C]) BlockLength() int { return mc.core.BlockLength() }

// Process runs one block: feeds input through the core's FDL, then for
// each output channel sums every routed input through its assigned
// filter and gain, and inverse-transforms the result into output.
// input must have NumInputs() rows and output NumOutputs() rows, each of
// BlockLength() samples.
func (mc *Convolver[F, C]) Process(input, output [][]F) error {
	numOutputs := mc.core.NumOutputs()
	if len(output) != numOutputs {
		return upolserr.Newf(upolserr.InvalidArgument, "routing: expected %d output channels, got %d", numOutputs, len(output))
	}
	for o, row := range output {
		if len(row) != mc.core.BlockLength() {
			return upolserr.Newf(upolserr.InvalidArgument, "routing: output channel %d length %d, want %d", o, len(row), mc.core.BlockLength())
		}
	}

	if err := mc.core.ProcessInputs(input); err != nil {
		return err
	}

	entries := mc.table.entries
	ei := 0
	for outIdx := 0; outIdx < numOutputs; outIdx++ {
		for i := range mc.acc {
			mc.acc[i] = 0
		}

		any := false
		for ei < len(entries) && entries[ei].OutIdx == outIdx {
			e := entries[ei]
			if err := mc.core.ProcessFilter(e.InIdx, e.FilterIdx, e.Gain, mc.acc, any); err != nil {
				return err
			}
			any = true
			ei++
		}

		if err := mc.core.TransformOutput(mc.acc, output[outIdx]); err != nil {
			return err
		}
	}

	return nil
}
