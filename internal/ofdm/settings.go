package ofdm

// Settings holds the mutable tuning knobs for the demodulator's feedback
// loops. All fields may be changed between calls to Process; mutating them
// mid-call is undefined behaviour.
type Settings struct {
	// NullPowerUpdateBeta is the IIR rate (0..1) on the L1-power average.
	NullPowerUpdateBeta float32
	// NullPowerTotalSamples is the block size used for L1 power averaging.
	NullPowerTotalSamples int
	// NullPowerDecimationFactor is the stride in blocks when updating the average.
	NullPowerDecimationFactor int
	// NullPowerThresholdStart is the fraction of the average below which the
	// signal is considered to be in the NULL symbol.
	NullPowerThresholdStart float32
	// NullPowerThresholdEnd is the fraction of the average above which the
	// NULL symbol is considered to have ended.
	NullPowerThresholdEnd float32
	// FineFrequencyUpdateBeta is the IIR rate (0..1) on the fine frequency offset.
	FineFrequencyUpdateBeta float32
	// CoarseFrequencyIsEnabled toggles integer-bin frequency correction.
	CoarseFrequencyIsEnabled bool
	// CoarseFrequencyMaxRange is the full search width as a fraction of NFFT:
	// offsets within +-floor(0.5*CoarseFrequencyMaxRange*NFFT) bins are searched.
	CoarseFrequencyMaxRange float32
	// CoarseFrequencySlowUpdateBeta is the IIR rate used once coarse frequency is locked and stable.
	CoarseFrequencySlowUpdateBeta float32
	// FineTimeImpulsePeakThresholdDB is the minimum acceptable impulse peak height, in dB above the mean.
	FineTimeImpulsePeakThresholdDB float32
	// FineTimeImpulsePeakDistanceProbability weighs down peaks far from the expected PRS location.
	FineTimeImpulsePeakDistanceProbability float32
}

// DefaultSettings returns the reference tuning values.
func DefaultSettings() Settings {
	return Settings{
		NullPowerUpdateBeta:                    0.95,
		NullPowerTotalSamples:                  100,
		NullPowerDecimationFactor:              5,
		NullPowerThresholdStart:                0.35,
		NullPowerThresholdEnd:                  0.75,
		FineFrequencyUpdateBeta:                0.95,
		CoarseFrequencyIsEnabled:               true,
		CoarseFrequencyMaxRange:                0.1,
		CoarseFrequencySlowUpdateBeta:          0.1,
		FineTimeImpulsePeakThresholdDB:         20.0,
		FineTimeImpulsePeakDistanceProbability: 0.15,
	}
}
