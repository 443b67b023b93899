package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
)

// fakeSource hands out preset blocks on demand.
type fakeSource struct {
	blocks  chan audioio.Block
	mu      sync.Mutex
	started bool
	stopped bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{blocks: make(chan audioio.Block, 16)}
}

func (f *fakeSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeSource) Blocks() <-chan audioio.Block { return f.blocks }
func (f *fakeSource) Close() error                 { return nil }

func (f *fakeSource) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type capturedFrame struct {
	frame []byte
	rate  int
}

func collectFrames(t *testing.T, ch <-chan capturedFrame, n int) []capturedFrame {
	t.Helper()
	var frames []capturedFrame
	for len(frames) < n {
		select {
		case f := <-ch:
			frames = append(frames, f)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d frames", len(frames), n)
		}
	}
	return frames
}

func TestPipelineForwardsFrames(t *testing.T) {
	src := newFakeSource()
	frames := make(chan capturedFrame, 16)

	p := New(src, 16000, func(frame []byte, rate int) {
		frames <- capturedFrame{frame: frame, rate: rate}
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	src.blocks <- audioio.Block{Samples: make([]int16, 320), SampleRate: 16000}

	got := collectFrames(t, frames, 1)
	if got[0].rate != 16000 {
		t.Errorf("expected rate 16000, got %d", got[0].rate)
	}
	// 320 samples at the target rate stay 320 samples = 640 bytes.
	if len(got[0].frame) != 640 {
		t.Errorf("expected 640 bytes, got %d", len(got[0].frame))
	}
}

func TestPipelineResamplesToTargetRate(t *testing.T) {
	src := newFakeSource()
	frames := make(chan capturedFrame, 16)

	p := New(src, 16000, func(frame []byte, rate int) {
		frames <- capturedFrame{frame: frame, rate: rate}
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	// 960 samples at 48kHz resample 3:1 down to 320 at 16kHz.
	src.blocks <- audioio.Block{Samples: make([]int16, 960), SampleRate: 48000}

	got := collectFrames(t, frames, 1)
	if len(got[0].frame) != 640 {
		t.Errorf("expected 640 bytes after resample, got %d", len(got[0].frame))
	}
}

func TestPipelineStopIsSynchronous(t *testing.T) {
	src := newFakeSource()

	var mu sync.Mutex
	count := 0

	p := New(src, 16000, func(frame []byte, rate int) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !src.wasStopped() {
		t.Error("device not stopped")
	}

	mu.Lock()
	after := count
	mu.Unlock()

	// No sink call may land after Stop returned.
	src.blocks <- audioio.Block{Samples: make([]int16, 320), SampleRate: 16000}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	if count != after {
		t.Errorf("sink called after Stop: %d -> %d", after, count)
	}
	mu.Unlock()

	if err := p.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestPipelineStartTwice(t *testing.T) {
	src := newFakeSource()
	p := New(src, 16000, func([]byte, int) {})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Errorf("second Start: %v", err)
	}
	p.Stop()
}
