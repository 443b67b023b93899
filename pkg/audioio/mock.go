package audioio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/vishalgiri25/fridge-critic/pkg/pcm"
)

// MockSource synthesizes a 440Hz tone in real time, standing in for a
// microphone when none is attached.
type MockSource struct {
	cfg Config

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	blocks chan Block
	phase  float64
}

var _ Source = (*MockSource)(nil)

func NewMockSource(cfg Config) (*MockSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MockSource{
		cfg:    cfg,
		blocks: make(chan Block, 8),
	}, nil
}

func (s *MockSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrDeviceUnavailable
	}
	if s.started {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.run(ctx, s.done)
	return nil
}

// run paces synthetic blocks at the real-time rate of the configured
// block size.
func (s *MockSource) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := time.Duration(float64(s.cfg.BlockSize) / float64(s.cfg.SampleRate) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			block := Block{Samples: s.tone(), SampleRate: s.cfg.SampleRate}
			select {
			case s.blocks <- block:
			default:
				// Consumer fell behind; drop the oldest.
				select {
				case <-s.blocks:
				default:
				}
				select {
				case s.blocks <- block:
				default:
				}
			}
		}
	}
}

// tone generates one block of a 440Hz sine at -12dBFS, round-tripping
// through the float codec the way a real capture path would.
func (s *MockSource) tone() []int16 {
	floats := make([]float32, s.cfg.BlockSize)
	step := 2 * math.Pi * 440 / float64(s.cfg.SampleRate)
	for i := range floats {
		floats[i] = float32(0.25 * math.Sin(s.phase))
		s.phase += step
	}
	return pcm.BytesToSamples(pcm.FloatToPCM16(floats))
}

// Stop halts block delivery and waits for the generator to exit.
func (s *MockSource) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

func (s *MockSource) Blocks() <-chan Block {
	return s.blocks
}

func (s *MockSource) Close() error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.blocks)
	return nil
}

// ScheduledSource records one ScheduleAt call on a MockOutput.
type ScheduledSource struct {
	ID       SourceID
	StartAt  float64
	Duration float64
	Stopped  bool
}

// MockOutput is a playback device with a manually advanced clock, so
// scheduling decisions can be asserted deterministically.
type MockOutput struct {
	SampleRate int

	mu      sync.Mutex
	now     float64
	nextID  SourceID
	sources []*ScheduledSource
	closed  bool
}

var _ Output = (*MockOutput)(nil)

func NewMockOutput(sampleRate int) *MockOutput {
	return &MockOutput{SampleRate: sampleRate, nextID: 1}
}

func (o *MockOutput) ScheduleAt(samples []int16, startAt float64) (SourceID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, ErrDeviceUnavailable
	}

	if startAt < o.now {
		startAt = o.now
	}

	id := o.nextID
	o.nextID++
	o.sources = append(o.sources, &ScheduledSource{
		ID:       id,
		StartAt:  startAt,
		Duration: float64(len(samples)) / float64(o.SampleRate),
	})
	return id, nil
}

func (o *MockOutput) Stop(id SourceID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, src := range o.sources {
		if src.ID == id {
			src.Stopped = true
		}
	}
	return nil
}

func (o *MockOutput) StopAll() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, src := range o.sources {
		src.Stopped = true
	}
	return nil
}

func (o *MockOutput) Now() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

// SetNow moves the mock clock to an absolute time.
func (o *MockOutput) SetNow(t float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now = t
}

// Advance moves the mock clock forward.
func (o *MockOutput) Advance(d float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now += d
}

// Scheduled returns a snapshot of every ScheduleAt call so far.
func (o *MockOutput) Scheduled() []ScheduledSource {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ScheduledSource, len(o.sources))
	for i, src := range o.sources {
		out[i] = *src
	}
	return out
}

func (o *MockOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}
