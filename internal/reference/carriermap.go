// Package reference builds the two DAB-specific lookup tables the core
// ofdm package needs but does not itself know how to construct: the
// frequency de-interleaving carrier map and the phase reference symbol
// spectrum, both defined by ETSI EN 300 401 clause 14.
package reference

import "fmt"

// CarrierMap builds the frequency de-interleaving lookup table for a
// transmission with totalFFT FFT bins and len(carrierMap) data carriers.
// carrierMap[i] is filled with the zero-indexed output position (skipping
// the DC bin, centred on it) that logical carrier i should be read from
// after the FFT.
//
// This undoes the clause 14.6 frequency interleaving: transmitted bit
// order is scrambled across carriers so that a deep frequency-selective
// fade cannot wipe out a contiguous run of one symbol's bits.
func CarrierMap(carrierMap []int, totalFFT int) {
	totalCarriers := len(carrierMap)
	if totalCarriers == 0 {
		panic("reference: carrierMap must be non-empty")
	}
	if totalFFT <= 0 {
		panic("reference: totalFFT must be positive")
	}
	if totalFFT%4 != 0 {
		panic(fmt.Sprintf("reference: totalFFT (%d) must be a multiple of 4", totalFFT))
	}
	if totalCarriers > totalFFT {
		panic(fmt.Sprintf("reference: totalCarriers (%d) must be <= totalFFT (%d)", totalCarriers, totalFFT))
	}

	fftIndexDC := totalFFT / 2
	fftIndexStart := fftIndexDC - totalCarriers/2
	fftIndexEnd := fftIndexDC + totalCarriers/2

	carrierMapIndex := 0
	piValue := 0
	k := totalFFT / 4
	for i := 0; i < totalFFT; i++ {
		fftIndex := piValue
		piValue = (13*piValue + k - 1) % totalFFT

		if fftIndex < fftIndexStart || fftIndex > fftIndexEnd || fftIndex == fftIndexDC {
			continue
		}

		var carrierOutIndex int
		if fftIndex < fftIndexDC {
			carrierOutIndex = fftIndex - fftIndexStart
		} else {
			carrierOutIndex = fftIndex - fftIndexStart - 1
		}
		carrierMap[carrierMapIndex] = carrierOutIndex
		carrierMapIndex++
	}
}
