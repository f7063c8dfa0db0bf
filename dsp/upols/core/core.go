// Package core implements the uniformly-partitioned, frequency-domain
// convolution engine (CoreConvolverUniform) that every other dsp/upols
// package builds on: a frequency-domain delay line (FDL) of input
// partitions, a bank of frequency-domain filter partitions, and the
// forward/process/inverse steps that turn one new time-domain input
// block into one new time-domain output block per active route.
//
// It is grounded on dsp/conv/partitioned.go's ring-of-partitions
// bookkeeping (newest block held at a rotating cursor, dot-product
// accumulation across partitions) generalized from a single 1-in/1-out
// non-uniform stage ladder to a uniform, single partition size, N-input
// filter bank that knows nothing about which input feeds which output —
// that wiring lives one layer up, in dsp/upols/routing.
package core

import (
	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
	"github.com/cwbudde/algo-dsp/internal/ring"
	"github.com/cwbudde/algo-dsp/internal/vecops"
)

// CoreConvolverUniformT is the uniformly-partitioned convolution engine,
// generic over the sample type F and its matching complex bin type C.
type CoreConvolverUniformT[F kernel.Float, C kernel.Cplx] struct {
	numInputs, numOutputs int
	blockLength           int
	maxFilterLen          int
	maxFilters            int
	numPartitions         int
	dftSize               int
	dftBins               int
	dftBinsPadded         int
	alignment             int
	complexAlignment      int

	transform   kernel.Transform[F, C]
	filterScale F

	inputRing *ring.Buffer[F]
	fdl       [][]C // [numInputs][numPartitions*dftBinsPadded]
	fdlCursor int   // physical slot currently holding logical block 0 (newest)

	filters [][]C // [maxFilters][numPartitions*dftBinsPadded]

	packTime   []F // dftSize scratch for packing a time-domain window before Forward
	fwdBins    []C // dftBins scratch, the raw Forward() output before padding
	accBins    []C // dftBinsPadded scratch for process_filter's partition accumulation
	inverseIn  []C // dftBins scratch view handed to Inverse
	inverseOut []F // dftSize scratch, the Inverse() output before trimming
}

// CoreConvolverUniform is the float64/complex128 specialization.
type CoreConvolverUniform = CoreConvolverUniformT[float64, complex128]

// CoreConvolverUniform32 is the float32/complex64 specialization.
type CoreConvolverUniform32 = CoreConvolverUniformT[float32, complex64]

// NewCore builds a convolution core for numInputs input channels and
// numOutputs output channels (outputs are not yet wired to inputs; see
// dsp/upols/routing), processing blockLength samples at a time, with a
// filter bank of maxFilters slots each up to maxFilterLen taps long.
//
// initialFilters, if non-nil, seeds the filter bank the same way
// InitFilters does; pass nil to start with an all-zero bank.
// alignment is an element-count hint for the internal row strides
// (complexAlignment derives from it, at one complex element per two real
// elements); it is otherwise advisory in this implementation (see
// DESIGN.md for why no real pointer-alignment is enforced).
func NewCore[F kernel.Float, C kernel.Cplx](
	numInputs, numOutputs, blockLength, maxFilterLen, maxFilters int,
	initialFilters [][]F,
	alignment int,
	fftBackend string,
) (*CoreConvolverUniformT[F, C], error) {
	if numInputs <= 0 || numOutputs <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "core: numInputs and numOutputs must be > 0")
	}
	if blockLength <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "core: blockLength must be > 0")
	}
	if maxFilterLen <= 0 || maxFilters <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "core: maxFilterLen and maxFilters must be > 0")
	}
	if alignment <= 0 {
		alignment = 1
	}
	complexAlignment := alignment / 2
	if complexAlignment < 1 {
		complexAlignment = 1
	}

	numPartitions := ceilDiv(maxFilterLen, blockLength)
	dftSize := 2 * blockLength
	dftBins := blockLength + 1
	dftBinsPadded := nextMultiple(dftBins, complexAlignment)

	transform, err := kernel.NewTransform[F, C](fftBackend, dftSize)
	if err != nil {
		return nil, err
	}

	c := &CoreConvolverUniformT[F, C]{
		numInputs:        numInputs,
		numOutputs:       numOutputs,
		blockLength:      blockLength,
		maxFilterLen:     maxFilterLen,
		maxFilters:       maxFilters,
		numPartitions:    numPartitions,
		dftSize:          dftSize,
		dftBins:          dftBins,
		dftBinsPadded:    dftBinsPadded,
		alignment:        alignment,
		complexAlignment: complexAlignment,
		transform:        transform,
		filterScale:      filterScale(transform, dftSize),
		fdl:              make([][]C, numInputs),
		filters:          make([][]C, maxFilters),
		packTime:         make([]F, dftSize),
		fwdBins:          make([]C, dftBins),
		accBins:          make([]C, dftBinsPadded),
		inverseIn:        make([]C, dftBins),
		inverseOut:       make([]F, dftSize),
	}

	inputRing, err := ring.New[F](numInputs, dftSize)
	if err != nil {
		return nil, err
	}
	c.inputRing = inputRing

	for i := range c.fdl {
		c.fdl[i] = make([]C, numPartitions*dftBinsPadded)
	}
	for i := range c.filters {
		c.filters[i] = make([]C, numPartitions*dftBinsPadded)
	}

	if initialFilters != nil {
		if err := c.InitFilters(initialFilters); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// filterScale computes 1/(forward_scale*inverse_scale*dft_size), the
// normalization pre-applied to every stored filter so the pipeline is
// unity-gain regardless of the FFT backend's scaling convention.
func filterScale[F kernel.Float, C kernel.Cplx](t kernel.Transform[F, C], dftSize int) F {
	denom := t.ForwardScale() * t.InverseScale() * F(dftSize)
	return 1 / denom
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func nextMultiple(n, m int) int {
	if m <= 1 {
		return n
	}
	r := n % m
	if r == 0 {
		return n
	}
	return n + (m - r)
}

// BlockLength returns the configured block size in samples.
func (c *CoreConvolverUniformT[F, C]) BlockLength() int { return c.blockLength }

// NumInputs returns the number of input channels.
func (c *CoreConvolverUniformT[F, C]) NumInputs() int { return c.numInputs }

// NumOutputs returns the number of output channels.
func (c *CoreConvolverUniformT[F, C]) NumOutputs() int { return c.numOutputs }

// MaxFilters returns the filter bank's slot count.
func (c *CoreConvolverUniformT[F, C]) MaxFilters() int { return c.maxFilters }

// MaxFilterLen returns the maximum supported filter length in taps.
func (c *CoreConvolverUniformT[F, C]) MaxFilterLen() int { return c.maxFilterLen }

// DFTBins returns the number of meaningful complex bins per partition
// (dftBinsPadded may be larger, for alignment).
func (c *CoreConvolverUniformT[F, C]) DFTBins() int { return c.dftBins }

// Alignment returns the configured element alignment.
func (c *CoreConvolverUniformT[F, C]) Alignment() int { return c.alignment }

// ComplexAlignment returns the configured complex-element alignment.
func (c *CoreConvolverUniformT[F, C]) ComplexAlignment() int { return c.complexAlignment }

// ProcessInputs appends one blockLength-sample block per input channel to
// the frequency-domain delay line. input must have NumInputs() rows, each
// of length BlockLength().
func (c *CoreConvolverUniformT[F, C]) ProcessInputs(input [][]F) error {
	if len(input) != c.numInputs {
		return upolserr.Newf(upolserr.InvalidArgument, "core: expected %d input channels, got %d", c.numInputs, len(input))
	}
	for i, row := range input {
		if len(row) != c.blockLength {
			return upolserr.Newf(upolserr.InvalidArgument, "core: input channel %d length %d, want %d", i, len(row), c.blockLength)
		}
	}

	if err := c.inputRing.Write(input); err != nil {
		return err
	}

	c.fdlCursor = (c.fdlCursor - 1 + c.numPartitions) % c.numPartitions

	for in := 0; in < c.numInputs; in++ {
		window, err := c.inputRing.ReadPtr(in, 0)
		if err != nil {
			return err
		}
		if err := c.transform.Forward(c.fwdBins, window); err != nil {
			return err
		}

		block := c.fdlPartition(in, 0)
		vecops.ZeroC(block)
		copy(block[:c.dftBins], c.fwdBins)
	}

	return nil
}

// fdlPartition returns the physical slot backing logical partition
// blockIdx (0 = newest) of input channel in.
func (c *CoreConvolverUniformT[F, C]) fdlPartition(in, blockIdx int) []C {
	slot := (c.fdlCursor + blockIdx) % c.numPartitions
	start := slot * c.dftBinsPadded
	return c.fdl[in][start : start+c.dftBinsPadded]
}

func (c *CoreConvolverUniformT[F, C]) filterPartition(filterIdx, blockIdx int) []C {
	start := blockIdx * c.dftBinsPadded
	return c.filters[filterIdx][start : start+c.dftBinsPadded]
}

// GetFDLBlock returns a read-only view of input channel in's logical
// partition blockIdx (0 = newest, counting up to NumPartitions()-1).
func (c *CoreConvolverUniformT[F, C]) GetFDLBlock(in, blockIdx int) ([]C, error) {
	if in < 0 || in >= c.numInputs {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "core: input index %d out of range", in)
	}
	if blockIdx < 0 || blockIdx >= c.numPartitions {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "core: block index %d out of range", blockIdx)
	}
	return c.fdlPartition(in, blockIdx), nil
}

// GetFilterPartition returns a read-only view of filter filterIdx's
// partition blockIdx.
func (c *CoreConvolverUniformT[F, C]) GetFilterPartition(filterIdx, blockIdx int) ([]C, error) {
	if filterIdx < 0 || filterIdx >= c.maxFilters {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "core: filter index %d out of range", filterIdx)
	}
	if blockIdx < 0 || blockIdx >= c.numPartitions {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "core: block index %d out of range", blockIdx)
	}
	return c.filterPartition(filterIdx, blockIdx), nil
}

// ProcessFilter computes the dot product of input channel inIdx's FDL
// against filterIdx's partitions, scales by gain, and writes (or
// accumulates) the result into outBins (length DFTBins() or more; only
// the first DFTBins() entries are touched).
func (c *CoreConvolverUniformT[F, C]) ProcessFilter(inIdx, filterIdx int, gain F, outBins []C, accumulate bool) error {
	if inIdx < 0 || inIdx >= c.numInputs {
		return upolserr.Newf(upolserr.InvalidArgument, "core: input index %d out of range", inIdx)
	}
	if filterIdx < 0 || filterIdx >= c.maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "core: filter index %d out of range", filterIdx)
	}
	if len(outBins) < c.dftBins {
		return upolserr.Newf(upolserr.InvalidArgument, "core: outBins length %d shorter than %d bins", len(outBins), c.dftBins)
	}

	vecops.ZeroC(c.accBins)
	for p := 0; p < c.numPartitions; p++ {
		vecops.MulAddInPlaceC(c.accBins, c.fdlPartition(inIdx, p), c.filterPartition(filterIdx, p))
	}

	gc := realScalar[F, C](gain)
	if accumulate {
		vecops.MulConstAddInPlaceC(outBins[:c.dftBins], c.accBins[:c.dftBins], gc)
	} else {
		vecops.MulConstC(outBins[:c.dftBins], c.accBins[:c.dftBins], gc)
	}
	return nil
}

// TransformOutput inverse-transforms inBins (length >= DFTBins()) and
// copies the trailing BlockLength() samples — the non-aliased part of the
// overlap-save result — into outTime (length BlockLength()).
func (c *CoreConvolverUniformT[F, C]) TransformOutput(inBins []C, outTime []F) error {
	if len(inBins) < c.dftBins {
		return upolserr.Newf(upolserr.InvalidArgument, "core: inBins length %d shorter than %d bins", len(inBins), c.dftBins)
	}
	if len(outTime) != c.blockLength {
		return upolserr.Newf(upolserr.InvalidArgument, "core: outTime length %d, want %d", len(outTime), c.blockLength)
	}

	copy(c.inverseIn, inBins[:c.dftBins])
	if err := c.transform.Inverse(c.inverseOut, c.inverseIn); err != nil {
		return err
	}
	copy(outTime, c.inverseOut[c.blockLength:])
	return nil
}

// ClearFilters zeros every slot in the filter bank.
func (c *CoreConvolverUniformT[F, C]) ClearFilters() {
	for i := range c.filters {
		vecops.ZeroC(c.filters[i])
	}
}

// InitFilters transforms each row of matrix into its filter slot and
// zeros the remaining slots. len(matrix) must be <= MaxFilters() and
// every row length <= MaxFilterLen().
func (c *CoreConvolverUniformT[F, C]) InitFilters(matrix [][]F) error {
	if len(matrix) > c.maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "core: %d filter rows exceeds max %d", len(matrix), c.maxFilters)
	}
	for i, row := range matrix {
		if len(row) > c.maxFilterLen {
			return upolserr.Newf(upolserr.InvalidArgument, "core: filter row %d length %d exceeds max %d", i, len(row), c.maxFilterLen)
		}
	}

	for i, row := range matrix {
		if err := c.SetImpulseResponse(row, i); err != nil {
			return err
		}
	}
	for i := len(matrix); i < c.maxFilters; i++ {
		vecops.ZeroC(c.filters[i])
	}
	return nil
}

// SetImpulseResponse pre-scales ir by the filter-bank normalization
// constant, zero-pads it to BlockLength() taps per partition, and
// forward-transforms each partition into filterIdx's slot.
func (c *CoreConvolverUniformT[F, C]) SetImpulseResponse(ir []F, filterIdx int) error {
	if filterIdx < 0 || filterIdx >= c.maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "core: filter index %d out of range", filterIdx)
	}
	parts, err := c.TransformImpulseResponse(ir)
	if err != nil {
		return err
	}
	for p, part := range parts {
		block := c.filterPartition(filterIdx, p)
		vecops.ZeroC(block)
		copy(block[:c.dftBins], part)
	}
	return nil
}

// TransformImpulseResponse pre-scales ir by the filter-bank normalization
// constant, zero-pads it to BlockLength() taps per partition, and
// forward-transforms each partition, without writing into any filter
// slot. Used by dsp/upols/interp to populate its auxiliary filter store,
// which is interpolated between rather than ever run live.
func (c *CoreConvolverUniformT[F, C]) TransformImpulseResponse(ir []F) ([][]C, error) {
	if len(ir) > c.maxFilterLen {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "core: impulse response length %d exceeds max %d", len(ir), c.maxFilterLen)
	}

	parts := make([][]C, c.numPartitions)
	for p := 0; p < c.numPartitions; p++ {
		vecops.Zero(c.packTime)

		start := p * c.blockLength
		if start < len(ir) {
			end := start + c.blockLength
			if end > len(ir) {
				end = len(ir)
			}
			chunk := ir[start:end]
			for i, v := range chunk {
				c.packTime[i] = v * c.filterScale
			}
		}

		if err := c.transform.Forward(c.fwdBins, c.packTime); err != nil {
			return nil, err
		}

		part := make([]C, c.dftBins)
		copy(part, c.fwdBins)
		parts[p] = part
	}
	return parts, nil
}

// SetFilter bulk-copies a frequency-domain filter representation
// (numPartitions partitions of DFTBins() complex bins each, concatenated)
// directly into filterIdx's slot, bypassing the forward transform.
func (c *CoreConvolverUniformT[F, C]) SetFilter(freqDomain [][]C, filterIdx int) error {
	if filterIdx < 0 || filterIdx >= c.maxFilters {
		return upolserr.Newf(upolserr.InvalidArgument, "core: filter index %d out of range", filterIdx)
	}
	if len(freqDomain) != c.numPartitions {
		return upolserr.Newf(upolserr.InvalidArgument, "core: expected %d partitions, got %d", c.numPartitions, len(freqDomain))
	}
	for p, part := range freqDomain {
		if len(part) < c.dftBins {
			return upolserr.Newf(upolserr.InvalidArgument, "core: partition %d length %d shorter than %d bins", p, len(part), c.dftBins)
		}
	}

	for p, part := range freqDomain {
		block := c.filterPartition(filterIdx, p)
		vecops.ZeroC(block)
		copy(block[:c.dftBins], part[:c.dftBins])
	}
	return nil
}

// NumPartitions returns ceil(MaxFilterLen()/BlockLength()).
func (c *CoreConvolverUniformT[F, C]) NumPartitions() int { return c.numPartitions }

// realScalar constructs the complex scalar with zero imaginary part
// corresponding to a real gain g, for whichever of complex64/complex128 C
// is instantiated as. Go generics can't express "construct a C from an F"
// directly since complex() is only defined for the two concrete builtin
// complex types, so this type-switches on C's zero value once per call.
func realScalar[F kernel.Float, C kernel.Cplx](g F) C {
	var zero C
	switch any(zero).(type) {
	case complex128:
		return any(complex(float64(g), 0)).(C)
	case complex64:
		return any(complex(float32(g), 0)).(C)
	default:
		panic("core: unsupported complex bin type")
	}
}
