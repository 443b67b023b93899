// Package playback schedules synthesized audio chunks for gapless,
// interruptible output.
package playback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
	"github.com/vishalgiri25/fridge-critic/pkg/pcm"
)

// DefaultRate is the sample rate of synthesized speech.
const DefaultRate = 24000

// ErrTornDown is returned when enqueueing after Teardown.
var ErrTornDown = errors.New("playback: scheduler torn down")

// Scheduler keeps a running cursor on the output device clock so that
// chunks arriving faster than real time play back to back with no gap
// and no overlap. A barge-in flushes everything at once.
type Scheduler struct {
	out  audioio.Output
	rate int

	mu        sync.Mutex
	anchored  bool
	nextStart float64
	live      map[audioio.SourceID]float64
	tornDown  bool
}

// New builds a scheduler over an output device. rate <= 0 selects
// DefaultRate.
func New(out audioio.Output, rate int) *Scheduler {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Scheduler{
		out:  out,
		rate: rate,
		live: make(map[audioio.SourceID]float64),
	}
}

// Enqueue validates one PCM16 frame and schedules it at the cursor.
// A malformed frame is rejected without advancing the cursor, so one
// corrupt chunk cannot open a gap in the stream. A frame at a rate
// other than the device's is resampled before scheduling. rate <= 0
// uses the scheduler's default.
func (s *Scheduler) Enqueue(frame []byte, rate int) error {
	samples, err := pcm.SamplesFromFrame(frame)
	if err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	if len(samples) == 0 {
		return nil
	}
	if rate <= 0 {
		rate = s.rate
	}
	if rate != s.rate {
		samples = pcm.Resample(samples, rate, s.rate)
		if len(samples) == 0 {
			return nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return ErrTornDown
	}

	now := s.out.Now()

	// The cursor never points into the past: after a stall (or right
	// after a flush) the next chunk re-anchors at the current clock.
	start := now
	if s.anchored && s.nextStart > now {
		start = s.nextStart
	}

	id, err := s.out.ScheduleAt(samples, start)
	if err != nil {
		return fmt.Errorf("playback: schedule: %w", err)
	}

	duration := float64(len(samples)) / float64(s.rate)
	end := start + duration
	s.nextStart = end
	s.anchored = true
	s.live[id] = end

	// Forget buffers that have already finished.
	for id, end := range s.live {
		if end <= now {
			delete(s.live, id)
		}
	}

	return nil
}

// Flush stops every scheduled and playing buffer and resets the cursor,
// so the next chunk starts immediately. Idempotent.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *Scheduler) flushLocked() {
	for id := range s.live {
		if err := s.out.Stop(id); err != nil {
			log.Debug("playback: stop failed", "id", id, "error", err)
		}
	}
	s.live = make(map[audioio.SourceID]float64)
	s.anchored = false
	s.nextStart = 0
}

// Pending reports how many scheduled buffers have not been flushed or
// forgotten yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Teardown flushes and releases the output device. Idempotent; Enqueue
// fails afterwards.
func (s *Scheduler) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return nil
	}
	s.flushLocked()
	s.tornDown = true
	return s.out.Close()
}
