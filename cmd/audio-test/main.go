// Audio Test - loopback the microphone to the speaker through the
// capture pipeline and the playback scheduler, with a live level meter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
	"github.com/vishalgiri25/fridge-critic/pkg/capture"
	"github.com/vishalgiri25/fridge-critic/pkg/pcm"
	"github.com/vishalgiri25/fridge-critic/pkg/playback"
)

func main() {
	backendFlag := flag.String("audio", string(audioio.BackendAuto), "Audio backend: auto, portaudio, mock")
	rateFlag := flag.Int("rate", capture.DefaultRate, "Capture sample rate")
	flag.Parse()

	log.Init("warn")

	fmt.Println("🎤 Audio Loopback Test")
	fmt.Println("======================")
	fmt.Println("Speak; you should hear yourself. Ctrl+C to stop.")

	source, err := audioio.NewSource(audioio.Config{
		Backend:    audioio.Backend(*backendFlag),
		SampleRate: *rateFlag,
	})
	if err != nil {
		fmt.Printf("❌ Microphone: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()

	output, err := audioio.NewOutput(audioio.Config{
		Backend:    audioio.Backend(*backendFlag),
		SampleRate: *rateFlag,
	})
	if err != nil {
		fmt.Printf("❌ Speaker: %v\n", err)
		os.Exit(1)
	}

	scheduler := playback.New(output, *rateFlag)
	defer scheduler.Teardown()

	var frames, bytes int64
	var level atomic.Value
	level.Store(0.0)

	pipeline := capture.New(source, *rateFlag, func(frame []byte, rate int) {
		samples, err := pcm.SamplesFromFrame(frame)
		if err != nil {
			return
		}
		level.Store(pcm.CalculateRMS(samples))
		atomic.AddInt64(&frames, 1)
		atomic.AddInt64(&bytes, int64(len(frame)))

		if err := scheduler.Enqueue(frame, rate); err != nil {
			fmt.Printf("⚠️  enqueue: %v\n", err)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := pipeline.Start(ctx); err != nil {
		fmt.Printf("❌ Capture: %v\n", err)
		os.Exit(1)
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pipeline.Stop()
			fmt.Printf("\n✅ Done: %d frames, %d bytes\n",
				atomic.LoadInt64(&frames), atomic.LoadInt64(&bytes))
			return
		case <-ticker.C:
			rms := level.Load().(float64)
			bar := int(rms * 50)
			if bar > 50 {
				bar = 50
			}
			fmt.Printf("\r🔊 [%-50s] %.3f", strings.Repeat("█", bar), rms)
		}
	}
}
