package dsp

// DQPSK differentially demodulates two consecutive FFT spectra x0, x1 (each
// of length nfft) into y (length ndata, even). The negative-frequency half
// of the data carriers comes from the top ndata/2 bins, the positive-frequency
// half from bins [1, ndata/2] (bin 0, DC, is skipped).
func DQPSK(x0, x1 []complex64, y []complex64, nfft, ndata int) {
	if len(x0) != nfft || len(x1) != nfft {
		panic("dsp: DQPSK input length mismatch with nfft")
	}
	if len(y) != ndata {
		panic("dsp: DQPSK output length mismatch with ndata")
	}
	if ndata%2 != 0 {
		panic("dsp: DQPSK requires an even number of data carriers")
	}
	if nfft < ndata {
		panic("dsp: DQPSK requires nfft >= ndata")
	}

	h := ndata / 2
	for i := 0; i < h; i++ {
		k := nfft - h + i
		y[i] = x0[k] * conj64(x1[k])
	}
	for i := 0; i < h; i++ {
		k := 1 + i
		y[i+h] = x0[k] * conj64(x1[k])
	}
}
