package vecops

import "math"

// Benchmark sizes shared across all benchmark files in this package.
var benchSizes = []struct {
	name string
	size int
}{
	{"64", 64},
	{"256", 256},
	{"1K", 1024},
	{"4K", 4096},
}

func closeEnough(a, b float64) bool {
	const epsilon = 1e-12
	diff := math.Abs(a - b)
	if a == 0 || b == 0 {
		return diff < epsilon
	}
	return diff/math.Max(math.Abs(a), math.Abs(b)) < epsilon
}

func closeEnoughC(a, b complex128) bool {
	return closeEnough(real(a), real(b)) && closeEnough(imag(a), imag(b))
}
