// Package convert provides the strided float<->integer vector conversion
// primitive named in the elementwise vector dispatch operation set
// (internal/vecops does not implement it directly since it is the one op
// that crosses sample representations rather than operating within one).
//
// Conversion from float to integer rounds to nearest, ties away from zero,
// matching the "int->float uses rounding-to-nearest" contract; integer to
// float conversion is exact up to the target float's mantissa width.
package convert

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/upols/upolserr"
)

// Float64ToInt16 converts n samples from src (stride srcStride) to dst
// (stride dstStride), clamping to the int16 range and rounding to nearest.
func Float64ToInt16(dst []int16, dstStride int, src []float64, srcStride, n int) error {
	if err := checkStrided(len(dst), dstStride, len(src), srcStride, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dst[i*dstStride] = clampInt16(roundNearest(src[i*srcStride] * 32767.0))
	}
	return nil
}

// Int16ToFloat64 converts n int16 samples to the [-1,1] float64 range.
func Int16ToFloat64(dst []float64, dstStride int, src []int16, srcStride, n int) error {
	if err := checkStrided(len(dst), dstStride, len(src), srcStride, n); err != nil {
		return err
	}
	const scale = 1.0 / 32768.0
	for i := 0; i < n; i++ {
		dst[i*dstStride] = float64(src[i*srcStride]) * scale
	}
	return nil
}

// Float64ToInt32 converts n samples from src to a 32-bit PCM representation.
func Float64ToInt32(dst []int32, dstStride int, src []float64, srcStride, n int) error {
	if err := checkStrided(len(dst), dstStride, len(src), srcStride, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dst[i*dstStride] = clampInt32(roundNearest(src[i*srcStride] * 2147483647.0))
	}
	return nil
}

// Int32ToFloat64 converts n int32 PCM samples to the [-1,1] float64 range.
func Int32ToFloat64(dst []float64, dstStride int, src []int32, srcStride, n int) error {
	if err := checkStrided(len(dst), dstStride, len(src), srcStride, n); err != nil {
		return err
	}
	const scale = 1.0 / 2147483648.0
	for i := 0; i < n; i++ {
		dst[i*dstStride] = float64(src[i*srcStride]) * scale
	}
	return nil
}

func roundNearest(v float64) float64 {
	return math.Round(v)
}

func clampInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func clampInt32(v float64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func checkStrided(dstLen, dstStride, srcLen, srcStride, n int) error {
	if n <= 0 {
		return nil
	}
	if dstStride <= 0 || srcStride <= 0 {
		return upolserr.New(upolserr.InvalidArgument, "convert: strides must be positive")
	}
	if (n-1)*dstStride+1 > dstLen {
		return upolserr.New(upolserr.InvalidArgument, "convert: destination too short for stride/count")
	}
	if (n-1)*srcStride+1 > srcLen {
		return upolserr.New(upolserr.InvalidArgument, "convert: source too short for stride/count")
	}
	return nil
}
