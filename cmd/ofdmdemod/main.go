// Command ofdmdemod demodulates a raw unsigned 8-bit I/Q capture of a DAB
// OFDM signal into a soft-bit stream suitable for a downstream FIC/MSC
// Viterbi decoder.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeongseonghan/dab-ofdm-demod/internal/dabparams"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/ofdm"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/pipeline"
	"github.com/jeongseonghan/dab-ofdm-demod/internal/reference"
)

func main() {
	inPath := flag.String("in", "-", "input raw IQ file (unsigned 8-bit interleaved), - for stdin")
	outPath := flag.String("out", "-", "output soft-bit file, - for stdout")
	mode := flag.Int("mode", 1, "DAB transmission mode (1-4)")
	blockBytes := flag.Int("block-bytes", 1<<16, "raw IQ bytes read per pipeline iteration")
	statusAddr := flag.String("status-addr", "", "optional address to serve a status WebSocket on, e.g. :8080")
	tagCRC := flag.Bool("tag-crc", false, "append a CRC-32 to every output frame")
	protectRS := flag.Bool("protect-rs", false, "wrap every output frame (including its CRC, if -tag-crc is set) in a Reed-Solomon codeword")
	flag.Parse()

	dabMode := dabparams.Mode(*mode)
	params := dabparams.Parameters(dabMode)

	carrierMapper := make([]int, params.NData)
	reference.CarrierMap(carrierMapper, params.NFFT)

	prsFFT := make([]complex64, params.NFFT)
	reference.PRSFFT(prsFFT, reference.PRSMode(dabMode))

	demod := ofdm.New(params, carrierMapper, prsFFT)

	src, err := openInput(*inPath)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer src.Close()

	sink, err := openOutput(*outPath)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}
	defer sink.Close()

	if *statusAddr != "" {
		hub := pipeline.NewStatusHub()
		go serveStatus(*statusAddr, hub)
		demod.SubscribeBitsOut(func(bits []int8) {
			hub.BroadcastFrame(demod.State.String(), demod.TotalFramesRead, demod.TotalFramesDesync)
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nshutting down...")
		os.Exit(0)
	}()

	cfg := pipeline.Config{
		SampleBlockBytes: *blockBytes,
		TagFrameCRC:      *tagCRC,
		ProtectFrameRS:   *protectRS,
	}
	if err := pipeline.Run(cfg, src, sink, demod); err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	log.Printf("frames read=%d desync=%d", demod.TotalFramesRead, demod.TotalFramesDesync)
}

func serveStatus(addr string, hub *pipeline.StatusHub) {
	mux := http.NewServeMux()
	mux.Handle("/status", hub)
	log.Printf("status websocket listening on %s/status", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("status server: %v", err)
	}
}

func openInput(path string) (readCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdin}, nil
	}
	return os.Open(path)
}

func openOutput(path string) (writeCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type readCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

type writeCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }

type nopWriteCloser struct{ *os.File }

func (nopWriteCloser) Close() error { return nil }
