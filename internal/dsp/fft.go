package dsp

import "gonum.org/v1/gonum/dsp/fourier"

// Plan is a cached forward/inverse complex FFT for a fixed transform size N.
// Mirrors the reference demodulator's approach of building the FFT plan once
// at construction (rustfft's FftPlanner) rather than per call.
type Plan struct {
	n       int
	fft     *fourier.CmplxFFT
	scratch []complex128
}

// NewPlan builds an FFT/IFFT plan for transforms of length n.
func NewPlan(n int) *Plan {
	return &Plan{
		n:       n,
		fft:     fourier.NewCmplxFFT(n),
		scratch: make([]complex128, n),
	}
}

// Len returns the transform size this plan was built for.
func (p *Plan) Len() int {
	return p.n
}

// Forward computes the in-place forward FFT of x, which must have length N.
func (p *Plan) Forward(x []complex64) {
	for i, v := range x {
		p.scratch[i] = complex(float64(real(v)), float64(imag(v)))
	}
	p.fft.Coefficients(p.scratch, p.scratch)
	for i, v := range p.scratch {
		x[i] = complex(float32(real(v)), float32(imag(v)))
	}
}

// Inverse computes the in-place inverse FFT of x, which must have length N.
func (p *Plan) Inverse(x []complex64) {
	for i, v := range x {
		p.scratch[i] = complex(float64(real(v)), float64(imag(v)))
	}
	p.fft.Sequence(p.scratch, p.scratch)
	for i, v := range p.scratch {
		x[i] = complex(float32(real(v)), float32(imag(v)))
	}
}
