package ofdm

import "fmt"

// Parameters describes the fixed structure of a DAB transmission mode's OFDM
// frame: one NULL symbol followed by NSym data symbols, the first of which
// is the phase reference symbol (PRS). After differential QPSK demodulation
// between consecutive symbols, NSym-1 data symbols remain.
type Parameters struct {
	NSym  int // symbols per frame, including the PRS (>= 2)
	NNull int // samples in the NULL symbol
	NSymp int // samples in one OFDM data symbol (cyclic prefix + FFT window)
	NFFT  int // FFT size
	NData int // number of data-carrying FFT bins (even, <= NFFT)

	// Derived fields, computed by NewParameters.
	NCP          int // cyclic-prefix length = NSymp - NFFT
	NDQPSK       int // NSym - 1
	NOutSamples  int // NDQPSK * NData
	NOutBits     int // 2 * NOutSamples
	NInSamples   int // NNull + NSymp*NSym
}

// NewParameters builds the derived fields from the required subset and
// validates the cross-field invariants. Panics on violation: these are
// construction-time preconditions, not recoverable runtime errors.
func NewParameters(nSym, nNull, nSymp, nFFT, nData int) Parameters {
	if nSym < 2 {
		panic(fmt.Sprintf("ofdm: NSym must be at least 2, got %d", nSym))
	}
	if nSymp < nFFT {
		panic(fmt.Sprintf("ofdm: NSymp (%d) must be >= NFFT (%d)", nSymp, nFFT))
	}
	if nFFT < nData {
		panic(fmt.Sprintf("ofdm: NFFT (%d) must be >= NData (%d)", nFFT, nData))
	}
	if nData%2 != 0 {
		panic(fmt.Sprintf("ofdm: NData must be even, got %d", nData))
	}

	return Parameters{
		NSym:        nSym,
		NNull:       nNull,
		NSymp:       nSymp,
		NFFT:        nFFT,
		NData:       nData,
		NCP:         nSymp - nFFT,
		NDQPSK:      nSym - 1,
		NOutSamples: (nSym - 1) * nData,
		NOutBits:    2 * (nSym - 1) * nData,
		NInSamples:  nNull + nSymp*nSym,
	}
}
