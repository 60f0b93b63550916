package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jeongseonghan/dab-ofdm-demod/internal/fec"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/ofdm"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/syncutil"
)

// slot is the single-item handoff between the reader and decode goroutines:
// a byte buffer that is either awaiting a reader fill (full=false) or ready
// for the decoder to consume (full=true).
type slot struct {
	full bool
	data []byte
}

// Config bounds the sizes of the pipeline's internal buffers.
type Config struct {
	// SampleBlockBytes is the number of raw I/Q bytes read per iteration;
	// must be even (one byte per I/Q component).
	SampleBlockBytes int
	// TagFrameCRC appends a CRC-32 to every soft-bit frame before it
	// reaches the sink, so a transport can detect a corrupted frame
	// without depending on the downstream Viterbi decoder's own
	// tolerance for bit errors.
	TagFrameCRC bool
	// ProtectFrameRS wraps every frame (CRC-tagged first, if TagFrameCRC
	// is also set) in a Reed-Solomon codeword before it reaches the sink,
	// so a lossy transport can recover from burst byte errors that CRC
	// alone could only detect.
	ProtectFrameRS bool
}

// Run wires src -> Demodulator -> sink on two goroutines (reader, writer)
// coordinated through a syncutil.Barrier, and blocks until src is
// exhausted. The decode step itself still runs synchronously inside
// Demodulator.Process, on the caller's goroutine, matching the
// demodulator's own single-threaded cooperative design.
func Run(cfg Config, src io.Reader, sink io.Writer, demod *ofdm.Demodulator) error {
	if cfg.SampleBlockBytes <= 0 || cfg.SampleBlockBytes%2 != 0 {
		return fmt.Errorf("pipeline: SampleBlockBytes must be a positive even number, got %d", cfg.SampleBlockBytes)
	}

	var rs *fec.RSEncoder
	if cfg.ProtectFrameRS {
		var err error
		rs, err = fec.NewRSEncoder()
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	}

	readSlot := syncutil.NewBarrier(slot{data: make([]byte, cfg.SampleBlockBytes)})
	writeSlot := syncutil.NewBarrier(slot{})

	readErrCh := make(chan error, 1)
	writeErrCh := make(chan error, 1)

	go func() {
		readErrCh <- runReader(src, readSlot)
	}()
	go func() {
		writeErrCh <- runWriter(sink, writeSlot)
	}()

	samples := make([]complex64, cfg.SampleBlockBytes/2)
	outBytes := make([]byte, demod.Params.NOutBits)

	demod.SubscribeBitsOut(func(bits []int8) {
		EncodeSoftBits(bits, outBytes)
		frame := outBytes
		if cfg.TagFrameCRC {
			frame = fec.AppendCRC32(outBytes)
		}
		if rs != nil {
			encoded, err := rs.Encode(frame)
			if err != nil {
				log.Printf("pipeline: RS encode error: %v", err)
			} else {
				frame = encoded
			}
		}
		writeSlot.Set(slot{full: true, data: frame})
	})

	for {
		if err := readSlot.Wait(func(s slot) bool { return s.full }); err != nil {
			break
		}
		buf := readSlot.Get().data
		DecodeSamples(buf, samples)
		readSlot.Set(slot{full: false, data: buf})

		demod.Process(samples)
	}

	writeSlot.Close()

	readErr := <-readErrCh
	writeErr := <-writeErrCh
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return fmt.Errorf("pipeline: reader: %w", readErr)
	}
	if writeErr != nil && !errors.Is(writeErr, io.EOF) {
		return fmt.Errorf("pipeline: writer: %w", writeErr)
	}
	return nil
}

// runReader fills readSlot from src until src errors (typically io.EOF),
// then closes readSlot so the decode loop unblocks and Run can shut down
// the writer.
func runReader(src io.Reader, readSlot *syncutil.Barrier[slot]) error {
	for {
		if err := readSlot.Wait(func(s slot) bool { return !s.full }); err != nil {
			return nil
		}
		buf := readSlot.Get().data
		if _, err := io.ReadFull(src, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Printf("pipeline: read error: %v", err)
			}
			readSlot.Close()
			return err
		}
		if err := readSlot.Set(slot{full: true, data: buf}); err != nil {
			return nil
		}
	}
}

func runWriter(sink io.Writer, writeSlot *syncutil.Barrier[slot]) error {
	for {
		if err := writeSlot.Wait(func(s slot) bool { return s.full }); err != nil {
			return nil
		}
		buf := writeSlot.Get().data
		if _, err := sink.Write(buf); err != nil {
			log.Printf("pipeline: write error: %v", err)
			return err
		}
		if err := writeSlot.Set(slot{full: false, data: buf}); err != nil {
			return nil
		}
	}
}
