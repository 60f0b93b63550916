// Package ofdm implements the DAB OFDM demodulator state machine: frame
// synchronisation, coarse and fine frequency correction, fine time
// alignment, FFT, differential QPSK demodulation, carrier de-interleaving
// and soft-bit quantisation. It is single-threaded and cooperative: Process
// runs to completion on the caller's goroutine and performs no allocation
// in steady state.
package ofdm

import (
	"fmt"
	"math"

	"github.com/jeongseonghan/dab-ofdm-demod/internal/buffer"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/dsp"
)

// fineFrequencyMargin widens the fine-frequency wrap boundary by 1% to
// avoid oscillation when the true offset sits exactly at +-half a bin.
const fineFrequencyMargin float32 = 1.01

// Demodulator drives the OFDM synchronisation and demodulation state
// machine described in package ofdm. All buffers are allocated once at
// construction and reused across frames.
type Demodulator struct {
	State    State
	Settings Settings
	Params   Parameters

	// TotalFramesRead counts successfully demodulated frames.
	TotalFramesRead uint32
	// TotalFramesDesync counts frames abandoned due to a weak impulse peak.
	TotalFramesDesync uint32

	// CoarseFrequencyOffset is the integer-bin frequency error, normalised
	// to the sample rate (bin spacing 1/NFFT).
	CoarseFrequencyOffset float32
	// FineFrequencyOffset is the sub-bin frequency error, wrapped so that
	// |f| < 1.01/(2*NFFT).
	FineFrequencyOffset float32
	// FineTimeOffset is the signed sample offset of the detected PRS from
	// its expected position.
	FineTimeOffset int
	// SignalL1Average is the IIR-smoothed L1 power average of the input.
	SignalL1Average float32

	isFoundCoarseFrequencyOffset bool
	isNullStartFound             bool
	isNullEndFound               bool

	fftPlan *dsp.Plan

	carrierMapper      []int
	correlationPrsFFT  []complex64
	correlationPrsTime []complex64

	nullPowerDip *buffer.Circular
	nullPrs      *buffer.Linear
	dataTime     *buffer.Linear

	dataFFT     []complex64
	dataDQPSK   []complex64
	dataOutBits []int8

	fineTimeImpulse        []float32
	coarseFrequencyImpulse []float32
	tempFFT                []complex64

	subscribers []func([]int8)
}

// New constructs a Demodulator for params, with carrierMapper (length
// params.NData, a permutation of [0,NData)) undoing the transmitter's
// frequency interleaving and prsFFT (length params.NFFT) the reference
// PRS spectrum. Panics if the sizes don't match params: these are
// construction-time invariants, not recoverable errors.
func New(params Parameters, carrierMapper []int, prsFFT []complex64) *Demodulator {
	if len(carrierMapper) != params.NData {
		panic(fmt.Sprintf("ofdm: carrier map has %d entries, expected %d", len(carrierMapper), params.NData))
	}
	if len(prsFFT) != params.NFFT {
		panic(fmt.Sprintf("ofdm: PRS FFT has %d bins, expected %d", len(prsFFT), params.NFFT))
	}

	d := &Demodulator{
		State:    StateFindingNullPowerDip,
		Settings: DefaultSettings(),
		Params:   params,

		fftPlan: dsp.NewPlan(params.NFFT),

		carrierMapper:      append([]int(nil), carrierMapper...),
		correlationPrsFFT:  make([]complex64, params.NFFT),
		correlationPrsTime: make([]complex64, params.NFFT),

		nullPowerDip: buffer.NewCircular(params.NNull),
		nullPrs:      buffer.NewLinear(params.NNull + params.NSymp),
		dataTime:     buffer.NewLinear(params.NInSamples),

		dataFFT:     make([]complex64, params.NSym*params.NFFT),
		dataDQPSK:   make([]complex64, params.NOutSamples),
		dataOutBits: make([]int8, params.NOutBits),

		fineTimeImpulse:        make([]float32, params.NFFT),
		coarseFrequencyImpulse: make([]float32, params.NFFT),
		tempFFT:                make([]complex64, params.NFFT),
	}

	d.init(prsFFT)
	return d
}

func (d *Demodulator) init(prsFFT []complex64) {
	copy(d.correlationPrsTime, prsFFT)
	dsp.RelativePhase(d.correlationPrsTime)
	d.fftPlan.Inverse(d.correlationPrsTime)
	for i := range d.correlationPrsTime {
		d.correlationPrsTime[i] = conj64(d.correlationPrsTime[i])
	}
	for i, v := range prsFFT {
		d.correlationPrsFFT[i] = conj64(v)
	}
}

// SubscribeBitsOut appends a callback invoked once per successful frame with
// exactly Params.NOutBits signed 8-bit soft values. The slice passed to fn
// is only valid for the duration of the call; re-entering Process from
// inside fn is not supported.
func (d *Demodulator) SubscribeBitsOut(fn func([]int8)) {
	d.subscribers = append(d.subscribers, fn)
}

// Process feeds samples through the demodulator. It is synchronous and runs
// to completion before returning.
func (d *Demodulator) Process(buf []complex64) {
	d.updateSignalPowerAverage(buf)

	for len(buf) > 0 {
		var consumed int
		switch d.State {
		case StateFindingNullPowerDip:
			consumed = d.findNullPowerDip(buf)
		case StateReadingNullAndPrs:
			consumed = d.readNullAndPrs(buf)
		case StateRunningCoarseFrequencySync:
			d.runCoarseFrequencySync()
		case StateRunningFineTimeSync:
			d.runFineTimeSync()
		case StateReadingSymbols:
			consumed = d.readSymbols(buf)
		case StateProcessingSymbols:
			d.processSymbols()
		}
		buf = buf[consumed:]
	}
}

func (d *Demodulator) updateSignalPowerAverage(buf []complex64) {
	blockSize := d.Settings.NullPowerTotalSamples
	stride := d.Settings.NullPowerDecimationFactor

	var sum float32
	var kept int
	for blockIdx := 0; (blockIdx+1)*blockSize <= len(buf); blockIdx++ {
		if blockIdx%stride != 0 {
			continue
		}
		block := buf[blockIdx*blockSize : (blockIdx+1)*blockSize]
		sum += dsp.L1Average(block)
		kept++
	}
	if kept == 0 {
		return
	}

	m := sum / float32(kept)
	beta := d.Settings.NullPowerUpdateBeta
	d.SignalL1Average = beta*m + (1-beta)*d.SignalL1Average
}

func (d *Demodulator) findNullPowerDip(buf []complex64) int {
	startThreshold := d.SignalL1Average * d.Settings.NullPowerThresholdStart
	endThreshold := d.SignalL1Average * d.Settings.NullPowerThresholdEnd

	blockSize := d.Settings.NullPowerTotalSamples
	totalRead := 0
	for totalRead+blockSize <= len(buf) {
		block := buf[totalRead : totalRead+blockSize]
		l1Average := dsp.L1Average(block)
		totalRead += blockSize

		if d.isNullStartFound {
			if l1Average > endThreshold {
				d.isNullEndFound = true
				break
			}
		} else if l1Average < startThreshold {
			d.isNullStartFound = true
		}
	}

	if !d.isNullEndFound {
		d.nullPowerDip.Consume(buf, true)
		return len(buf)
	}

	consumedBlocks := buf[:totalRead]
	d.nullPowerDip.Consume(consumedBlocks, true)

	d.nullPrs.Reset()
	d.nullPowerDip.Each(func(v complex64) {
		d.nullPrs.Consume([]complex64{v})
	})

	d.isNullStartFound = false
	d.isNullEndFound = false
	d.nullPowerDip.Reset()
	d.State = StateReadingNullAndPrs

	return totalRead
}

func (d *Demodulator) readNullAndPrs(buf []complex64) int {
	n := d.nullPrs.Consume(buf)
	if d.nullPrs.IsFull() {
		d.State = StateRunningCoarseFrequencySync
	}
	return n
}

func (d *Demodulator) runCoarseFrequencySync() {
	if !d.Settings.CoarseFrequencyIsEnabled {
		d.CoarseFrequencyOffset = 0
		d.State = StateRunningFineTimeSync
		return
	}

	nNull, nSymp, nCP, nFFT := d.Params.NNull, d.Params.NSymp, d.Params.NCP, d.Params.NFFT
	prs := d.nullPrs.Slice()[nNull : nNull+nSymp]
	prsFFTIn := prs[nCP:]

	copy(d.tempFFT, prsFFTIn)
	d.fftPlan.Forward(d.tempFFT)
	dsp.RelativePhase(d.tempFFT)
	d.fftPlan.Inverse(d.tempFFT)
	for i := range d.tempFFT {
		d.tempFFT[i] *= d.correlationPrsTime[i]
	}
	d.fftPlan.Forward(d.tempFFT)
	dsp.MagnitudeSpectrumDB(d.tempFFT, d.coarseFrequencyImpulse)

	dcBin := nFFT / 2
	maxOffset := int(math.Floor(0.5 * float64(d.Settings.CoarseFrequencyMaxRange) * float64(nFFT)))

	bestOffset := 0
	bestValue := float32(math.Inf(-1))
	for offset := -maxOffset; offset <= maxOffset; offset++ {
		value := d.coarseFrequencyImpulse[offset+dcBin]
		if value > bestValue {
			bestValue = value
			bestOffset = offset
		}
	}

	current := -float32(bestOffset) / float32(nFFT)
	delta := current - d.CoarseFrequencyOffset

	largeOffsetThreshold := float32(1.5) / float32(nFFT)
	isFastUpdate := abs32(delta) > largeOffsetThreshold || !d.isFoundCoarseFrequencyOffset
	beta := d.Settings.CoarseFrequencySlowUpdateBeta
	if isFastUpdate {
		beta = 1
	}
	step := beta * delta

	d.isFoundCoarseFrequencyOffset = true
	d.CoarseFrequencyOffset += step
	d.updateFineFrequencyOffset(-step)
	d.State = StateRunningFineTimeSync
}

func (d *Demodulator) runFineTimeSync() {
	nNull, nFFT, nCP, nSymp := d.Params.NNull, d.Params.NFFT, d.Params.NCP, d.Params.NSymp
	prsData := d.nullPrs.Slice()[nNull : nNull+nFFT]

	totalFrequencyOffset := d.CoarseFrequencyOffset + d.FineFrequencyOffset
	copy(d.tempFFT, prsData)
	dsp.ApplyPLL(d.tempFFT, totalFrequencyOffset)

	d.fftPlan.Forward(d.tempFFT)
	for i := range d.tempFFT {
		d.tempFFT[i] *= d.correlationPrsFFT[i]
	}
	d.fftPlan.Inverse(d.tempFFT)
	for i, v := range d.tempFFT {
		d.fineTimeImpulse[i] = 20 * log10f(cmplxAbs32(v))
	}

	peakIndex := 0
	peakWeighted := float32(math.Inf(-1))
	for i, v := range d.fineTimeImpulse {
		distance := i - nCP
		if distance < 0 {
			distance = -distance
		}
		weight := 1 - d.Settings.FineTimeImpulsePeakDistanceProbability*float32(distance)/float32(nSymp)
		weighted := weight * v
		if weighted > peakWeighted {
			peakWeighted = weighted
			peakIndex = i
		}
	}

	var sum float32
	for _, v := range d.fineTimeImpulse {
		sum += v
	}
	average := sum / float32(nFFT)

	peakHeight := d.fineTimeImpulse[peakIndex] - average
	if peakHeight < d.Settings.FineTimeImpulsePeakThresholdDB {
		d.TotalFramesDesync++
		d.resetFromDesync()
		return
	}

	offset := peakIndex - nCP
	start := nNull + offset
	if start < 0 {
		start = 0
	}
	length := nSymp - offset
	if length < 0 {
		length = 0
	}

	d.dataTime.Reset()
	d.dataTime.Consume(d.nullPrs.Slice()[start : start+length])

	d.nullPrs.Reset()
	d.FineTimeOffset = offset
	d.State = StateReadingSymbols
}

func (d *Demodulator) readSymbols(buf []complex64) int {
	n := d.dataTime.Consume(buf)
	if d.dataTime.IsFull() {
		d.State = StateProcessingSymbols
	}
	return n
}

func (d *Demodulator) processSymbols() {
	nSym, nSymp, nNull, nFFT, nCP, nData, nDQPSK := d.Params.NSym, d.Params.NSymp, d.Params.NNull, d.Params.NFFT, d.Params.NCP, d.Params.NData, d.Params.NDQPSK

	nullOffset := nSym * nSymp
	d.nullPrs.Reset()
	d.nullPrs.Consume(d.dataTime.Slice()[nullOffset : nullOffset+nNull])

	netFrequencyOffset := d.FineFrequencyOffset + d.CoarseFrequencyOffset
	dsp.ApplyPLL(d.dataTime.Slice(), netFrequencyOffset)

	var totalPhaseError float32
	for i := 0; i < nSym; i++ {
		sym := d.dataTime.Slice()[i*nSymp : (i+1)*nSymp]
		totalPhaseError += dsp.CyclicPrefixPhaseError(sym, nCP)
	}
	averagePhaseError := totalPhaseError / float32(nSym)

	fineFrequencyError := (1 / (2 * float32(nFFT))) * (averagePhaseError / math.Pi)
	d.updateFineFrequencyOffset(-d.Settings.FineFrequencyUpdateBeta * fineFrequencyError)

	for i := 0; i < nSym; i++ {
		symbolIn := d.dataTime.Slice()[i*nSymp : (i+1)*nSymp]
		fftIn := symbolIn[nCP:]
		fftOut := d.dataFFT[i*nFFT : (i+1)*nFFT]
		copy(fftOut, fftIn)
		d.fftPlan.Forward(fftOut)
	}

	for i := 0; i < nDQPSK; i++ {
		x0 := d.dataFFT[i*nFFT : (i+1)*nFFT]
		x1 := d.dataFFT[(i+1)*nFFT : (i+2)*nFFT]
		y := d.dataDQPSK[i*nData : (i+1)*nData]
		dsp.DQPSK(x0, x1, y, nFFT, nData)
	}

	for i := 0; i < nDQPSK; i++ {
		x := d.dataDQPSK[i*nData : (i+1)*nData]
		y := d.dataOutBits[i*2*nData : (i+1)*2*nData]
		dsp.SoftBits(d.carrierMapper, x, y)
	}

	for _, subscriber := range d.subscribers {
		subscriber(d.dataOutBits)
	}
	d.TotalFramesRead++
	d.State = StateReadingNullAndPrs
}

func (d *Demodulator) resetFromDesync() {
	d.State = StateFindingNullPowerDip
	d.nullPrs.Reset()
	d.SignalL1Average = 0
	d.isFoundCoarseFrequencyOffset = false
	d.FineFrequencyOffset = 0
	d.CoarseFrequencyOffset = 0
	d.FineTimeOffset = 0
}

func (d *Demodulator) updateFineFrequencyOffset(delta float32) {
	halfBin := 1 / (2 * float32(d.Params.NFFT))
	wrap := halfBin * fineFrequencyMargin

	d.FineFrequencyOffset += delta
	d.FineFrequencyOffset = signedMod(d.FineFrequencyOffset, wrap)
}

// signedMod returns x mod m with the result in (-m, +m), using math.Mod
// (whose result keeps the sign of x).
func signedMod(x, m float32) float32 {
	return float32(math.Mod(float64(x), float64(m)))
}

func conj64(c complex64) complex64 {
	return complex(real(c), -imag(c))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func cmplxAbs32(c complex64) float32 {
	re, im := float64(real(c)), float64(imag(c))
	return float32(math.Hypot(re, im))
}

func log10f(x float32) float32 {
	return float32(math.Log10(float64(x)))
}
