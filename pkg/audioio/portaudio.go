package audioio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/debug"
)

// PortAudioSource captures microphone audio through PortAudio.
type PortAudioSource struct {
	cfg Config

	mu      sync.Mutex
	stream  *portaudio.Stream
	started bool
	closed  bool

	blocks chan Block
}

var _ Source = (*PortAudioSource)(nil)

// NewPortAudioSource opens the configured input device (the default
// one when cfg.Device is empty). The device is acquired here, before
// any capture starts, so a missing microphone fails fast.
func NewPortAudioSource(cfg Config) (*PortAudioSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s := &PortAudioSource{
		cfg:    cfg,
		blocks: make(chan Block, 8),
	}

	stream, err := openInputStream(cfg, s.capture)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s.stream = stream

	log.Debug("audio input opened", "rate", cfg.SampleRate, "block", cfg.BlockSize)
	return s, nil
}

// capture runs on the PortAudio callback thread. Blocks are copied out
// and handed off without blocking; when the consumer falls behind the
// oldest block is dropped.
func (s *PortAudioSource) capture(in []int16) {
	samples := make([]int16, len(in))
	copy(samples, in)

	block := Block{Samples: samples, SampleRate: s.cfg.SampleRate}

	select {
	case s.blocks <- block:
	default:
		select {
		case <-s.blocks:
			debug.Log("🎙️ capture: dropped stale block\n")
		default:
		}
		select {
		case s.blocks <- block:
		default:
		}
	}
}

func (s *PortAudioSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrDeviceUnavailable
	}
	if s.started {
		return nil
	}

	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s.started = true
	return nil
}

// Stop halts capture synchronously; no block is delivered after it
// returns.
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	return s.stream.Stop()
}

func (s *PortAudioSource) Blocks() <-chan Block {
	return s.blocks
}

func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.started {
		s.stream.Stop()
		s.started = false
	}
	err := s.stream.Close()
	portaudio.Terminate()
	close(s.blocks)
	return err
}

// scheduledBuffer is one queued playback buffer inside the mixer.
type scheduledBuffer struct {
	samples    []int16
	startFrame int64
}

// PortAudioOutput plays scheduled buffers through PortAudio. A frame
// counter advanced by the output callback is the device clock, so
// Now() and ScheduleAt share a timebase that cannot drift from the
// hardware.
type PortAudioOutput struct {
	cfg Config

	mu      sync.Mutex
	stream  *portaudio.Stream
	closed  bool
	nextID  SourceID
	frame   int64
	buffers map[SourceID]*scheduledBuffer
}

var _ Output = (*PortAudioOutput)(nil)

// NewPortAudioOutput opens the configured output device and starts the
// stream; the mixer emits silence until something is scheduled.
func NewPortAudioOutput(cfg Config) (*PortAudioOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	o := &PortAudioOutput{
		cfg:     cfg,
		nextID:  1,
		buffers: make(map[SourceID]*scheduledBuffer),
	}

	stream, err := openOutputStream(cfg, o.mix)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	o.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	log.Debug("audio output opened", "rate", cfg.SampleRate, "block", cfg.BlockSize)
	return o, nil
}

// mix runs on the PortAudio callback thread. It sums every active
// buffer into the output block and advances the device clock.
func (o *PortAudioOutput) mix(out []int16) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := range out {
		out[i] = 0
	}

	blockStart := o.frame
	for id, buf := range o.buffers {
		// Copy from the buffer wherever its schedule overlaps this
		// block, clipping the sum of concurrent buffers.
		for i := range out {
			frame := blockStart + int64(i)
			rel := frame - buf.startFrame
			if rel < 0 || int(rel) >= len(buf.samples) {
				continue
			}
			sum := int32(out[i]) + int32(buf.samples[rel])
			if sum > 32767 {
				sum = 32767
			} else if sum < -32768 {
				sum = -32768
			}
			out[i] = int16(sum)
		}

		if buf.startFrame+int64(len(buf.samples)) <= blockStart+int64(len(out)) {
			delete(o.buffers, id)
		}
	}

	o.frame += int64(len(out))
}

func (o *PortAudioOutput) ScheduleAt(samples []int16, startAt float64) (SourceID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, ErrDeviceUnavailable
	}

	startFrame := int64(startAt * float64(o.cfg.SampleRate))
	if startFrame < o.frame {
		startFrame = o.frame
	}

	id := o.nextID
	o.nextID++

	buf := make([]int16, len(samples))
	copy(buf, samples)
	o.buffers[id] = &scheduledBuffer{
		samples:    buf,
		startFrame: startFrame,
	}
	return id, nil
}

func (o *PortAudioOutput) Stop(id SourceID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.buffers, id)
	return nil
}

func (o *PortAudioOutput) StopAll() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buffers = make(map[SourceID]*scheduledBuffer)
	return nil
}

func (o *PortAudioOutput) Now() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(o.frame) / float64(o.cfg.SampleRate)
}

func (o *PortAudioOutput) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.buffers = make(map[SourceID]*scheduledBuffer)
	o.mu.Unlock()

	o.stream.Stop()
	err := o.stream.Close()
	portaudio.Terminate()
	return err
}
