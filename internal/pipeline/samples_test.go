package pipeline

import "testing"

func TestDecodeSamples_SubtractsDCBias(t *testing.T) {
	in := []byte{128, 128, 255, 0, 0, 255}
	out := make([]complex64, 3)
	DecodeSamples(in, out)

	want := []complex64{0, complex(127, -128), complex(-128, 127)}
	for i := range out {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDecodeSamples_PanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()
	DecodeSamples([]byte{1, 2, 3}, make([]complex64, 2))
}

func TestEncodeSoftBits_TwosComplementRoundTrip(t *testing.T) {
	bits := []int8{0, 1, -1, 127, -128}
	out := make([]byte, len(bits))
	EncodeSoftBits(bits, out)

	want := []byte{0, 1, 255, 127, 128}
	for i := range out {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
