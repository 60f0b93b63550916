package dsp

import (
	"math"
	"testing"
)

func TestL1Average(t *testing.T) {
	block := []complex64{complex(3, 4), complex(-1, -2)}
	got := L1Average(block)
	want := float32((3 + 4 + 1 + 2)) / 2
	if got != want {
		t.Errorf("L1Average = %v, want %v", got, want)
	}
}

func TestRelativePhase(t *testing.T) {
	x := []complex64{complex(1, 0), complex(0, 1), complex(-1, 0)}
	RelativePhase(x)
	if x[len(x)-1] != 0 {
		t.Errorf("last element should be zeroed, got %v", x[len(x)-1])
	}
	want0 := conj64(complex64(complex(1, 0))) * complex(0, 1)
	if x[0] != want0 {
		t.Errorf("x[0] = %v, want %v", x[0], want0)
	}
}

func TestMagnitudeSpectrumDB_DCAtCenter(t *testing.T) {
	n := 4
	x := make([]complex64, n)
	x[0] = complex(10, 0) // DC bin before shifting
	y := make([]float32, n)
	MagnitudeSpectrumDB(x, y)
	// DC should land at index n/2 after the shift.
	want := 20 * float32(math.Log10(10))
	if diff := y[n/2] - want; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("y[n/2] = %v, want %v", y[n/2], want)
	}
}

func TestApplyPLL_ZeroOffsetIsIdentity(t *testing.T) {
	x := []complex64{1, complex(0, 1), -1}
	orig := append([]complex64{}, x...)
	ApplyPLL(x, 0)
	for i := range x {
		if re, im := real(x[i]-orig[i]), imag(x[i]-orig[i]); re > 1e-3 || re < -1e-3 || im > 1e-3 || im < -1e-3 {
			t.Errorf("index %d: got %v, want %v (zero offset must be identity)", i, x[i], orig[i])
		}
	}
}

func TestApplyPLL_UnitMagnitudePreserved(t *testing.T) {
	x := []complex64{1, 1, 1, 1, 1, 1, 1, 1}
	ApplyPLL(x, 0.13)
	for i, v := range x {
		mag := math.Hypot(float64(real(v)), float64(imag(v)))
		if mag < 0.95 || mag > 1.05 {
			t.Errorf("index %d magnitude = %v, want ~1", i, mag)
		}
	}
}

func TestCyclicPrefixPhaseError_ZeroForIdenticalPrefix(t *testing.T) {
	// suffix == prefix (rotated by zero) should give a zero phase error.
	x := []complex64{1, 2, 3, 1, 2}
	got := CyclicPrefixPhaseError(x, 2)
	if got > 1e-3 || got < -1e-3 {
		t.Errorf("phase error = %v, want ~0", got)
	}
}

func TestDQPSK_SplitsNegativeAndPositiveHalves(t *testing.T) {
	nfft := 8
	ndata := 4
	x0 := make([]complex64, nfft)
	x1 := make([]complex64, nfft)
	for i := range x0 {
		x0[i] = complex(float32(i+1), 0)
		x1[i] = complex(float32(i+1), 0)
	}
	y := make([]complex64, ndata)
	DQPSK(x0, x1, y, nfft, ndata)
	// Identical spectra differentially demodulated should give purely real, positive symbols.
	for i, v := range y {
		if imag(v) != 0 || real(v) <= 0 {
			t.Errorf("y[%d] = %v, want positive real", i, v)
		}
	}
	// Bin k holds k+1 in both spectra, so y = (k+1)^2: the negative half reads
	// the top ndata/2 bins (6, 7), the positive half bins 1 and 2 (DC skipped).
	want := []float32{49, 64, 4, 9}
	for i, w := range want {
		if real(y[i]) != w {
			t.Errorf("y[%d] = %v, want %v", i, y[i], w)
		}
	}
}

func TestSoftBits_PermutationAndRange(t *testing.T) {
	carrierMapper := []int{1, 0}
	x := []complex64{complex(1, 1), complex(-1, -1)}
	y := make([]int8, 4)
	SoftBits(carrierMapper, x, y)
	for _, b := range y {
		if b < -127 || b > 127 {
			t.Errorf("soft bit %d out of range", b)
		}
	}
	// carrierMapper[0]=1 selects x[1]=(-1,-1): re=-1 normalised -> y[0]=clip(-127*-1)=127
	if y[0] != 127 {
		t.Errorf("y[0] = %d, want 127", y[0])
	}
}
