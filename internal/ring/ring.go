// Package ring implements a multi-channel circular sample buffer with a
// mirrored-write layout: every sample is stored at two positions
// capacity apart, so any capacity-length window ending at the write
// head is always contiguous in memory and never needs an explicit
// wrap-around copy on read.
//
// This generalizes dsp/delay.Line's single-channel, single-sample-at-a-time
// contract to the whole-block, multi-channel read/write UPOLS needs: write
// a block per channel, then read a contiguous capacity-length history
// window per channel without a gather step. It is generic over the sample
// type so the same implementation backs both the float64 and float32
// convolution core specializations.
package ring

import "github.com/cwbudde/algo-dsp/dsp/upols/upolserr"

// Sample is the set of element types a Buffer can hold.
type Sample interface {
	~float32 | ~float64
}

// Buffer holds channels independent circular histories, each of capacity
// samples, stored in a 2*capacity-per-channel flat layout.
type Buffer[S Sample] struct {
	channels int
	capacity int
	data     [][]S // data[ch] has length 2*capacity
	writePos int    // next write index within [0, capacity)
}

// New allocates a Buffer for the given channel count and per-channel
// capacity (in samples). Both must be positive.
func New[S Sample](channels, capacity int) (*Buffer[S], error) {
	if channels <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "ring: channels must be > 0")
	}
	if capacity <= 0 {
		return nil, upolserr.New(upolserr.InvalidArgument, "ring: capacity must be > 0")
	}
	b := &Buffer[S]{
		channels: channels,
		capacity: capacity,
		data:     make([][]S, channels),
	}
	for ch := range b.data {
		b.data[ch] = make([]S, 2*capacity)
	}
	return b, nil
}

// Channels returns the number of independent histories held.
func (b *Buffer[S]) Channels() int { return b.channels }

// Capacity returns the per-channel history length in samples.
func (b *Buffer[S]) Capacity() int { return b.capacity }

// Write appends one block of samples per channel, advancing the write
// head by the block length. len(src) must equal Channels(); blocks longer
// than Capacity() return an error since the mirrored-write invariant
// cannot be preserved (the block can't be duplicated in a wrap-free way).
func (b *Buffer[S]) Write(src [][]S) error {
	if len(src) != b.channels {
		return upolserr.Newf(upolserr.InvalidArgument, "ring: expected %d channels, got %d", b.channels, len(src))
	}
	if b.channels == 0 {
		return nil
	}
	n := len(src[0])
	for ch := 1; ch < b.channels; ch++ {
		if len(src[ch]) != n {
			return upolserr.New(upolserr.InvalidArgument, "ring: channel blocks must be equal length")
		}
	}
	if n > b.capacity {
		return upolserr.Newf(upolserr.InvalidArgument, "ring: block length %d exceeds capacity %d", n, b.capacity)
	}

	for ch := 0; ch < b.channels; ch++ {
		buf := b.data[ch]
		pos := b.writePos
		for i := 0; i < n; i++ {
			v := src[ch][i]
			p := (pos + i) % b.capacity
			buf[p] = v
			buf[p+b.capacity] = v
		}
	}
	b.writePos = (b.writePos + n) % b.capacity
	return nil
}

// ReadPtr returns a contiguous, capacity-length view of channel ch's
// history ending samplesBack samples before the current write head
// (samplesBack == 0 means the window ends exactly at the sample most
// recently written). The returned slice aliases internal storage and is
// only valid until the next Write call.
func (b *Buffer[S]) ReadPtr(ch, samplesBack int) ([]S, error) {
	if ch < 0 || ch >= b.channels {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "ring: channel %d out of range", ch)
	}
	if samplesBack < 0 || samplesBack >= b.capacity {
		return nil, upolserr.Newf(upolserr.InvalidArgument, "ring: samplesBack %d out of range [0,%d)", samplesBack, b.capacity)
	}
	start := (b.writePos - samplesBack + b.capacity) % b.capacity
	return b.data[ch][start : start+b.capacity], nil
}

// Stride returns the per-channel storage stride (2*Capacity()), the
// distance between a sample's two mirrored copies.
func (b *Buffer[S]) Stride() int { return 2 * b.capacity }

// Reset zeroes all channel histories and rewinds the write head.
func (b *Buffer[S]) Reset() {
	for ch := range b.data {
		for i := range b.data[ch] {
			b.data[ch][i] = 0
		}
	}
	b.writePos = 0
}
