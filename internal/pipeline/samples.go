// Package pipeline wires a Demodulator to byte-oriented I/O: unsigned
// 8-bit I/Q sample decoding, soft-bit serialisation, and a reader/writer
// goroutine pair coordinated through a syncutil.Barrier so that decoding
// proceeds on its own goroutine while samples are read and soft bits are
// written concurrently.
package pipeline

// dcBias is subtracted from each unsigned 8-bit I/Q component before
// conversion to a centred float sample.
const dcBias = 128

// DecodeSamples converts raw unsigned 8-bit interleaved I/Q pairs in into
// complex64 samples in out. len(in) must be 2*len(out).
func DecodeSamples(in []byte, out []complex64) {
	if len(in) != 2*len(out) {
		panic("pipeline: DecodeSamples length mismatch")
	}
	for i := range out {
		re := float32(int(in[2*i]) - dcBias)
		im := float32(int(in[2*i+1]) - dcBias)
		out[i] = complex(re, im)
	}
}

// EncodeSoftBits serialises signed 8-bit soft values into bytes by
// reinterpreting each value's two's-complement bit pattern as an unsigned
// byte, the wire format a downstream Viterbi decoder expects.
func EncodeSoftBits(bits []int8, out []byte) {
	if len(bits) != len(out) {
		panic("pipeline: EncodeSoftBits length mismatch")
	}
	for i, b := range bits {
		out[i] = byte(b)
	}
}
