package dsp

// softDecisionHigh is the soft-decision amplitude Phil Karn's Viterbi
// decoder convention expects: logical bit 0 maps to +A, logical bit 1 to -A.
const softDecisionHigh float32 = 127.0

// SoftBits demaps the DQPSK vector x (length ndata) through carrierMapper
// (a permutation of [0,ndata)) into y (length 2*ndata): y[i] is the soft bit
// for the in-phase component and y[i+ndata] for the quadrature component.
//
// Each symbol is L-infinity normalised (divided by max(|re|,|im|)) before
// quantisation so that equal-magnitude real/imaginary parts produce
// equal-magnitude soft bits; the L2 norm would instead shrink both by
// 1/sqrt(2).
func SoftBits(carrierMapper []int, x []complex64, y []int8) {
	n := len(carrierMapper)
	if len(x) != n {
		panic("dsp: SoftBits carrier map length mismatch with input")
	}
	if len(y) != 2*n {
		panic("dsp: SoftBits output must be twice the input length")
	}

	for i := 0; i < n; i++ {
		v := x[carrierMapper[i]]
		amp := maxAbs32(abs32(real(v)), abs32(imag(v)))
		re, im := real(v), imag(v)
		if amp > 0 {
			re /= amp
			im /= amp
		}
		y[i] = quantiseSoftBit(re)
		y[i+n] = quantiseSoftBit(-im)
	}
}

func quantiseSoftBit(x float32) int8 {
	return int8(clamp(-x*softDecisionHigh, -127, 127))
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxAbs32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
