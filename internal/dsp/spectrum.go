package dsp

import "math"

// MagnitudeSpectrumDB writes the FFT-shifted dB magnitude of x into y: DC is
// moved to index n/2, and y[i] = 20*log10(|x[(i+n/2) mod n]|).
func MagnitudeSpectrumDB(x []complex64, y []float32) {
	n := len(x)
	if len(y) != n {
		panic("dsp: MagnitudeSpectrumDB length mismatch")
	}
	m := n / 2
	for i := 0; i < n; i++ {
		j := (i + m) % n
		mag := cmplxAbs(x[j])
		y[i] = 20 * float32(math.Log10(float64(mag)))
	}
}

func cmplxAbs(c complex64) float32 {
	re, im := float64(real(c)), float64(imag(c))
	return float32(math.Hypot(re, im))
}
