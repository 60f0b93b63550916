package dsp

// ApplyPLL rotates each x[i] by exp(j*2*pi*i*freqNormalised) in place, where
// freqNormalised is a frequency offset normalised to the sample rate.
//
// Uses a Chebyshev polynomial approximation of sin(2*pi*t) accurate on
// t in [-0.75, +0.75] turns, with a fast fractional reduction into that
// range. This is a performance choice (source:
// https://mooooo.ooo/chebyshev-sine-approximation); a library sin/cos would
// also satisfy the required accuracy at roughly twice the cost per sample.
func ApplyPLL(x []complex64, freqNormalised float32) {
	for i := range x {
		dt := float32(i) * freqNormalised
		// fast equivalent of dt - round(dt), wrapping into [-0.5, +0.5]
		dtOffset := ceil32(abs32(dt) - 0.5)
		dtOffset *= signum32(dt)
		dt -= dtOffset

		sin := fastSine(dt)
		cos := fastSine(dt + 0.25)
		x[i] *= complex(cos, sin)
	}
}

func ceil32(x float32) float32 {
	i := float32(int64(x))
	if i < x {
		return i + 1
	}
	return i
}

func signum32(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Chebyshev coefficients approximating sin(2*pi*x) on [-0.75, 0.75] turns.
const (
	sineA0 float32 = -25.1327419281005859375
	sineA1 float32 = 64.83582305908203125
	sineA2 float32 = -67.076629638671875
	sineA3 float32 = 38.495880126953125
	sineA4 float32 = -14.049663543701171875
	sineA5 float32 = 3.161602020263671875
)

func fastSine(x float32) float32 {
	z := x * x
	b5 := sineA5
	b4 := b5*z + sineA4
	b3 := b4*z + sineA3
	b2 := b3*z + sineA2
	b1 := b2*z + sineA1
	b0 := b1*z + sineA0
	return b0 * (z - 0.25) * x
}
