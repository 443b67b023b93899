// Package capture pumps microphone blocks into fixed-rate PCM16 frames
// for the transport.
package capture

import (
	"context"
	"sync"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
	"github.com/vishalgiri25/fridge-critic/pkg/pcm"
)

// DefaultRate is the sample rate the remote endpoint expects for
// captured speech.
const DefaultRate = 16000

// Sink receives each captured frame as little-endian PCM16 bytes at
// TargetRate. Implementations must not block for long; they run on the
// pipeline goroutine.
type Sink func(frame []byte, sampleRate int)

// Pipeline drains an audio source, resamples each block to the target
// rate and forwards the encoded frames to a sink.
type Pipeline struct {
	src        audioio.Source
	sink       Sink
	targetRate int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a pipeline. targetRate <= 0 selects DefaultRate.
func New(src audioio.Source, targetRate int, sink Sink) *Pipeline {
	if targetRate <= 0 {
		targetRate = DefaultRate
	}
	return &Pipeline{
		src:        src,
		sink:       sink,
		targetRate: targetRate,
	}
}

// Start begins capture. The device starts delivering blocks
// immediately; the sink decides whether each frame is forwarded or
// discarded.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := p.src.Start(ctx); err != nil {
		cancel()
		return err
	}

	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true

	go p.run(ctx, p.done)

	log.Debug("capture started", "target_rate", p.targetRate)
	return nil
}

func (p *Pipeline) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-p.src.Blocks():
			if !ok {
				return
			}
			if len(block.Samples) == 0 {
				continue
			}
			samples := block.Samples
			if block.SampleRate != p.targetRate {
				samples = pcm.Resample(samples, block.SampleRate, p.targetRate)
			}
			p.sink(pcm.SamplesToBytes(samples), p.targetRate)
		}
	}
}

// Stop halts the device and the pump synchronously. After Stop returns
// the sink will not be called again. Idempotent.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	err := p.src.Stop()
	cancel()
	<-done

	log.Debug("capture stopped")
	return err
}
