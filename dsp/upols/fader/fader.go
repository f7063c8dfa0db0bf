// Package fader implements the single-channel gain fader (spec §4.9): a
// precomputed linear ramp indexed by block position, applied per sample
// via internal/vecops.RampScale.
//
// Grounded on the teacher's envelope/smoothing idioms in
// dsp/effects/tremolo.go, generalized from a per-sample exponential
// smoothing coefficient recomputed every call to a ramp table built once
// at construction and indexed, since this fader's transitions have a
// fixed known length (interpolationSteps) rather than tremolo's
// open-ended continuous modulation.
package fader

import (
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
	"github.com/cwbudde/algo-dsp/internal/vecops"
)

// Fader precomputes a 0..1 linear ramp and applies it per sample to scale
// between a starting and ending gain over a fixed number of blocks.
type Fader[F kernel.Float] struct {
	blockSize          int
	interpolationSteps int
	periods            int
	ramp               []F
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// New builds a Fader whose ramp rises linearly from 0 to 1 over
// interpolationSteps samples and then holds at 1. alignment is accepted
// for parity with spec's constructor signature; this implementation has
// no manual-alignment concept (see DESIGN.md).
func New[F kernel.Float](blockSize, interpolationSteps, alignment int) (*Fader[F], error) {
	if blockSize <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "fader: blockSize must be > 0")
	}
	if interpolationSteps < 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "fader: interpolationSteps must be >= 0")
	}
	_ = alignment

	periods := ceilDiv(interpolationSteps, blockSize)
	n := (periods + 1) * blockSize
	ramp := make([]F, n)
	for i := range ramp {
		if interpolationSteps <= 0 || i >= interpolationSteps {
			ramp[i] = 1
			continue
		}
		ramp[i] = F(i) / F(interpolationSteps)
	}

	return &Fader[F]{
		blockSize:          blockSize,
		interpolationSteps: interpolationSteps,
		periods:            periods,
		ramp:               ramp,
	}, nil
}

// BlockSize returns the configured block length.
func (f *Fader[F]) BlockSize() int { return f.blockSize }

// Periods returns ceil(interpolationSteps/blockSize).
func (f *Fader[F]) Periods() int { return f.periods }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (f *Fader[F]) rampWindow(blockIndex int) []F {
	base := clamp(blockIndex, 0, f.periods) * f.blockSize
	return f.ramp[base : base+f.blockSize]
}

// Scale writes out[k] = (g0 + (g1-g0)*ramp[...]) * in[k] for one block.
func (f *Fader[F]) Scale(in, out []F, g0, g1 F, blockIndex int) error {
	if err := f.checkBlock(in, out); err != nil {
		return err
	}
	vecops.RampScale(out, in, f.rampWindow(blockIndex), g0, g1, false)
	return nil
}

// ScaleAndAccumulate adds (g0 + (g1-g0)*ramp[...]) * in[k] into out[k].
func (f *Fader[F]) ScaleAndAccumulate(in, out []F, g0, g1 F, blockIndex int) error {
	if err := f.checkBlock(in, out); err != nil {
		return err
	}
	vecops.RampScale(out, in, f.rampWindow(blockIndex), g0, g1, true)
	return nil
}

func (f *Fader[F]) checkBlock(in, out []F) error {
	if len(in) != f.blockSize {
		return upolserr.Newf(upolserr.InvalidArgument, "fader: input length %d, want %d", len(in), f.blockSize)
	}
	if len(out) != f.blockSize {
		return upolserr.Newf(upolserr.InvalidArgument, "fader: output length %d, want %d", len(out), f.blockSize)
	}
	return nil
}
