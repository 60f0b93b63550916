package dsp

// RelativePhase rewrites x in place so that x[i] holds the phase difference
// between consecutive bins: x[i] = conj(x[i]) * x[i+1] for i < n-1, and
// x[n-1] = 0. This removes a common phase rotation shared by every bin,
// which is what lets the coarse-frequency correlator work even before
// frequency offset has been removed.
func RelativePhase(x []complex64) {
	n := len(x)
	if n == 0 {
		return
	}
	for i := 0; i < n-1; i++ {
		x[i] = conj64(x[i]) * x[i+1]
	}
	x[n-1] = 0
}

func conj64(c complex64) complex64 {
	return complex(real(c), -imag(c))
}
