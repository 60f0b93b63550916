package pipeline

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/dab-ofdm-demod/internal/ofdm"
)

func TestRun_RejectsOddSampleBlockBytes(t *testing.T) {
	params := ofdm.NewParameters(4, 16, 20, 8, 4)
	carrierMapper := []int{0, 1, 2, 3}
	prsFFT := make([]complex64, params.NFFT)
	for i := range prsFFT {
		prsFFT[i] = complex(1, 0)
	}
	demod := ofdm.New(params, carrierMapper, prsFFT)

	err := Run(Config{SampleBlockBytes: 3}, bytes.NewReader(nil), &bytes.Buffer{}, demod)
	if err == nil {
		t.Fatal("expected error for odd SampleBlockBytes")
	}
}

func TestRun_DrainsInputWithoutHanging(t *testing.T) {
	params := ofdm.NewParameters(4, 16, 20, 8, 4)
	carrierMapper := []int{0, 1, 2, 3}
	prsFFT := make([]complex64, params.NFFT)
	for i := range prsFFT {
		prsFFT[i] = complex(1, 0)
	}
	demod := ofdm.New(params, carrierMapper, prsFFT)

	input := make([]byte, 256)
	for i := range input {
		input[i] = 128
	}
	var out bytes.Buffer

	if err := Run(Config{SampleBlockBytes: 16}, bytes.NewReader(input), &out, demod); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
