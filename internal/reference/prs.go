package reference

import (
	"fmt"
	"math"
)

// prsSegment is one contiguous run of FFT bins sharing an h-table row and
// phase multiple, per ETSI EN 300 401 table 23.
type prsSegment struct {
	fftBinStart   int
	fftBinEnd     int
	hTableRow     int
	phaseMultiple int
}

// hTable is ETSI EN 300 401 table 24: four rows of 32 h-values, indexed by
// position within a segment.
var hTable = [4][32]int{
	{0, 2, 0, 0, 0, 0, 1, 1, 2, 0, 0, 0, 2, 2, 1, 1, 0, 2, 0, 0, 0, 0, 1, 1, 2, 0, 0, 0, 2, 2, 1, 1},
	{0, 3, 2, 3, 0, 1, 3, 0, 2, 1, 2, 3, 2, 3, 3, 0, 0, 3, 2, 3, 0, 1, 3, 0, 2, 1, 2, 3, 2, 3, 3, 0},
	{0, 0, 0, 2, 0, 2, 1, 3, 2, 2, 0, 2, 2, 0, 1, 3, 0, 0, 0, 2, 0, 2, 1, 3, 2, 2, 0, 2, 2, 0, 1, 3},
	{0, 1, 2, 1, 0, 3, 3, 2, 2, 3, 2, 1, 2, 1, 3, 2, 0, 1, 2, 1, 0, 3, 3, 2, 2, 3, 2, 1, 2, 1, 3, 2},
}

var prsModeI = []prsSegment{
	{-768, -737, 0, 1}, {-736, -705, 1, 2}, {-704, -673, 2, 0}, {-672, -641, 3, 1},
	{-640, -609, 0, 3}, {-608, -577, 1, 2}, {-576, -545, 2, 2}, {-544, -513, 3, 3},
	{-512, -481, 0, 2}, {-480, -449, 1, 1}, {-448, -417, 2, 2}, {-416, -385, 3, 3},
	{-384, -353, 0, 1}, {-352, -321, 1, 2}, {-320, -289, 2, 3}, {-288, -257, 3, 3},
	{-256, -225, 0, 2}, {-224, -193, 1, 2}, {-192, -161, 2, 2}, {-160, -129, 3, 1},
	{-128, -97, 0, 1}, {-96, -65, 1, 3}, {-64, -33, 2, 1}, {-32, -1, 3, 2},
	{1, 32, 0, 3}, {33, 64, 3, 1}, {65, 96, 2, 1}, {97, 128, 1, 1},
	{129, 160, 0, 2}, {161, 192, 3, 2}, {193, 224, 2, 1}, {225, 256, 1, 0},
	{257, 288, 0, 2}, {289, 320, 3, 2}, {321, 352, 2, 3}, {353, 384, 1, 3},
	{385, 416, 0, 0}, {417, 448, 3, 2}, {449, 480, 2, 1}, {481, 512, 1, 3},
	{513, 544, 0, 3}, {545, 576, 3, 3}, {577, 608, 2, 3}, {609, 640, 1, 0},
	{641, 672, 0, 3}, {673, 704, 3, 0}, {705, 736, 2, 1}, {737, 768, 1, 1},
}

var prsModeII = []prsSegment{
	{-192, -161, 0, 2}, {-160, -129, 1, 3}, {-128, -97, 2, 2}, {-96, -65, 3, 2},
	{-64, -33, 0, 1}, {-32, -1, 1, 2}, {1, 32, 2, 0}, {33, 64, 1, 2},
	{65, 96, 0, 2}, {97, 128, 3, 1}, {129, 160, 2, 0}, {161, 192, 1, 3},
}

var prsModeIII = []prsSegment{
	{-96, -65, 0, 2}, {-64, -33, 1, 3}, {-32, -1, 2, 0},
	{1, 32, 3, 2}, {33, 64, 2, 2}, {65, 96, 1, 2},
}

var prsModeIV = []prsSegment{
	{-384, -353, 0, 0}, {-352, -321, 1, 1}, {-320, -289, 2, 1}, {-288, -257, 3, 2},
	{-256, -225, 0, 2}, {-224, -193, 1, 2}, {-192, -161, 2, 0}, {-160, -129, 3, 3},
	{-128, -97, 0, 3}, {-96, -65, 1, 1}, {-64, -33, 2, 3}, {-32, -1, 3, 2},
	{1, 32, 0, 0}, {33, 64, 3, 1}, {65, 96, 2, 0}, {97, 128, 1, 2},
	{129, 160, 0, 0}, {161, 192, 3, 1}, {193, 224, 2, 2}, {225, 256, 1, 2},
	{257, 288, 0, 2}, {289, 320, 3, 1}, {321, 352, 2, 3}, {353, 384, 1, 0},
}

// PRSMode selects which transmission mode's segment table PRSFFT should
// use. It mirrors dabparams.Mode but is kept independent so this package
// has no dependency on the demodulator's mode-selection type.
type PRSMode int

const (
	PRSModeI PRSMode = iota + 1
	PRSModeII
	PRSModeIII
	PRSModeIV
)

func segmentsFor(mode PRSMode) []prsSegment {
	switch mode {
	case PRSModeI:
		return prsModeI
	case PRSModeII:
		return prsModeII
	case PRSModeIII:
		return prsModeIII
	case PRSModeIV:
		return prsModeIV
	default:
		panic(fmt.Sprintf("reference: unknown PRS mode %d", mode))
	}
}

// PRSFFT fills prsFFT (length must equal the transmission mode's NFFT) with
// the phase reference symbol's spectrum: unit-magnitude phasors at every
// data-carrying bin from the ETSI table, zero everywhere else (including
// the DC bin, which the PRS never occupies).
func PRSFFT(prsFFT []complex64, mode PRSMode) {
	segments := segmentsFor(mode)
	totalFFT := len(prsFFT)

	totalCarriers := segments[len(segments)-1].fftBinEnd - segments[0].fftBinStart + 1
	if segments[len(segments)-1].fftBinEnd != -segments[0].fftBinStart {
		panic("reference: PRS FFT bins must be centred and symmetrical")
	}
	if totalFFT < totalCarriers {
		panic(fmt.Sprintf("reference: PRS FFT buffer too small: %d < %d", totalFFT, totalCarriers))
	}

	for i := range prsFFT {
		prsFFT[i] = 0
	}

	for _, seg := range segments {
		row := hTable[seg.hTableRow]
		for col, fftBin := 0, seg.fftBinStart; fftBin <= seg.fftBinEnd; col, fftBin = col+1, fftBin+1 {
			hValue := row[col]
			phaseMultiple := hValue + seg.phaseMultiple
			phase := (math.Pi / 2) * float64(phaseMultiple)
			prs := complex(float32(math.Cos(phase)), float32(math.Sin(phase)))

			var fftIndex int
			if fftBin < 0 {
				fftIndex = fftBin + totalFFT
			} else {
				fftIndex = fftBin
			}
			prsFFT[fftIndex] = prs
		}
	}
}
