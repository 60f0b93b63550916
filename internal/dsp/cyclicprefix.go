package dsp

import "math"

// CyclicPrefixPhaseError returns arg(sum_{i<prefixLen} suffix[i] * conj(prefix[i]))
// for a symbol x of length L with cyclic-prefix length prefixLen, where
// prefix = x[:prefixLen] and suffix = x[L-prefixLen:L]. The result estimates
// the fractional frequency offset that rotated the prefix copy relative to
// its source.
func CyclicPrefixPhaseError(x []complex64, prefixLen int) float32 {
	length := len(x)
	if length < prefixLen {
		panic("dsp: symbol shorter than cyclic prefix")
	}
	prefix := x[:prefixLen]
	suffix := x[length-prefixLen : length]

	var sum complex64
	for i := 0; i < prefixLen; i++ {
		sum += suffix[i] * conj64(prefix[i])
	}
	return float32(math.Atan2(float64(imag(sum)), float64(real(sum))))
}
