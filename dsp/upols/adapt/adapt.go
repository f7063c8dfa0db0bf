// Package adapt implements the block-length adaptation wrapper (spec
// §4.10): it lets a caller drive a fixed-block-size convolver with
// arbitrarily-sized input/output chunks, buffering the remainder between
// calls.
//
// Grounded on dsp/conv.StreamingConvolver's block-oriented contract
// (fixed BlockSize(), persistent state between calls) and dsp/buffer's
// ring-buffered-history idiom, reusing internal/ring.Buffer as the
// underlying storage for both the pending-input and pending-output
// queues rather than hand-rolling a second circular buffer type.
package adapt

import (
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
	"github.com/cwbudde/algo-dsp/internal/ring"
)

// BlockProcessor is any convolver that consumes and produces exactly
// BlockLength() frames per channel per call — the shape
// dsp/upols/routing.Convolver, dsp/upols/crossfade.Convolver and
// dsp/upols/interp.Convolver's wrapped core all share, matching
// dsp/conv.StreamingConvolver's role one level up.
type BlockProcessor interface {
	Process(input, output [][]float64) error
	BlockLength() int
}

// Wrapper adapts a BlockProcessor to accept and emit chunks of any
// length, buffering across the block boundary.
type Wrapper struct {
	inner       BlockProcessor
	blockLength int
	numInputs   int
	numOutputs  int

	inRing  *ring.Buffer[float64]
	outRing *ring.Buffer[float64]
	inLevel  int
	outLevel int

	innerIn  [][]float64
	innerOut [][]float64
}

// New wraps inner, buffering between calls to inner.Process with numInputs
// input channels and numOutputs output channels.
func New(inner BlockProcessor, numInputs, numOutputs int) (*Wrapper, error) {
	if inner == nil {
		return nil, upolserr.New(upolserr.InvalidArgument, "adapt: inner must not be nil")
	}
	if numInputs <= 0 || numOutputs <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "adapt: numInputs and numOutputs must be > 0")
	}
	blockLength := inner.BlockLength()
	if blockLength <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "adapt: inner block length must be > 0")
	}

	inRing, err := ring.New[float64](numInputs, 2*blockLength)
	if err != nil {
		return nil, err
	}
	outRing, err := ring.New[float64](numOutputs, 2*blockLength)
	if err != nil {
		return nil, err
	}

	zeros := make([][]float64, numOutputs)
	for ch := range zeros {
		zeros[ch] = make([]float64, blockLength)
	}
	if err := outRing.Write(zeros); err != nil {
		return nil, err
	}

	innerIn := make([][]float64, numInputs)
	for ch := range innerIn {
		innerIn[ch] = make([]float64, blockLength)
	}
	innerOut := make([][]float64, numOutputs)
	for ch := range innerOut {
		innerOut[ch] = make([]float64, blockLength)
	}

	return &Wrapper{
		inner:       inner,
		blockLength: blockLength,
		numInputs:   numInputs,
		numOutputs:  numOutputs,
		inRing:      inRing,
		outRing:     outRing,
		outLevel:    blockLength,
		innerIn:     innerIn,
		innerOut:    innerOut,
	}, nil
}

// BlockLength returns the wrapped processor's fixed block length.
func (w *Wrapper) BlockLength() int { return w.blockLength }

// Process consumes nFrames frames per channel from input and produces
// nFrames frames per channel into output, running the wrapped processor
// as many times as needed to keep the internal buffers balanced.
// input and output must have numInputs and numOutputs rows respectively,
// each at least nFrames long.
func (w *Wrapper) Process(input, output [][]float64, nFrames int) error {
	if len(input) != w.numInputs {
		return upolserr.Newf(upolserr.InvalidArgument, "adapt: expected %d input channels, got %d", w.numInputs, len(input))
	}
	if len(output) != w.numOutputs {
		return upolserr.Newf(upolserr.InvalidArgument, "adapt: expected %d output channels, got %d", w.numOutputs, len(output))
	}
	for ch, row := range input {
		if len(row) < nFrames {
			return upolserr.Newf(upolserr.InvalidArgument, "adapt: input channel %d length %d shorter than %d frames", ch, len(row), nFrames)
		}
	}
	for ch, row := range output {
		if len(row) < nFrames {
			return upolserr.Newf(upolserr.InvalidArgument, "adapt: output channel %d length %d shorter than %d frames", ch, len(row), nFrames)
		}
	}

	inPos, outPos, remaining := 0, 0, nFrames
	for remaining > 0 {
		chunk := w.blockLength - w.inLevel
		if chunk > remaining {
			chunk = remaining
		}

		src := make([][]float64, w.numInputs)
		for ch := range src {
			src[ch] = input[ch][inPos : inPos+chunk]
		}
		if err := w.inRing.Write(src); err != nil {
			return err
		}
		w.inLevel += chunk
		inPos += chunk

		if w.inLevel == w.blockLength {
			for ch := range w.innerIn {
				window, err := w.inRing.ReadPtr(ch, 0)
				if err != nil {
					return err
				}
				copy(w.innerIn[ch], window[len(window)-w.blockLength:])
			}
			if err := w.inner.Process(w.innerIn, w.innerOut); err != nil {
				return err
			}
			if err := w.outRing.Write(w.innerOut); err != nil {
				return err
			}
			w.inLevel -= w.blockLength
			w.outLevel += w.blockLength
		}

		if chunk > 0 {
			samplesBack := w.outLevel - chunk
			for ch := range output {
				window, err := w.outRing.ReadPtr(ch, samplesBack)
				if err != nil {
					return err
				}
				tail := window[len(window)-chunk:]
				copy(output[ch][outPos:outPos+chunk], tail)
			}
			w.outLevel -= chunk
			outPos += chunk
		}

		remaining -= chunk
	}

	return nil
}
