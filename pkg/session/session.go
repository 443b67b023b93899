// Package session drives one live voice conversation: it owns the
// capture pipeline, the playback scheduler, the transport and the
// transcript, and runs the state machine tying them together.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
	"github.com/vishalgiri25/fridge-critic/pkg/capture"
	"github.com/vishalgiri25/fridge-critic/pkg/persona"
	"github.com/vishalgiri25/fridge-critic/pkg/playback"
	"github.com/vishalgiri25/fridge-critic/pkg/transcript"
	"github.com/vishalgiri25/fridge-critic/pkg/transport"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotIdle is returned by Start on a session that already ran.
var ErrNotIdle = errors.New("session: already started")

// Config shapes the conversation.
type Config struct {
	Persona  persona.Persona
	Language persona.Language

	// Analysis grounds the critic in a fridge scan; may be nil.
	Analysis *persona.Analysis

	// CaptureRate is the rate outbound speech is sent at.
	// Zero selects capture.DefaultRate.
	CaptureRate int

	// PlaybackRate is the rate synthesized speech plays at.
	// Zero selects playback.DefaultRate.
	PlaybackRate int
}

// DialFunc opens the transport for a session. The instructions string
// is the composed persona prompt.
type DialFunc func(ctx context.Context, instructions string) (transport.Transport, error)

// Deps are the devices and services a session runs on. The session
// takes ownership of Source and Output and releases them on teardown.
type Deps struct {
	Source audioio.Source
	Output audioio.Output
	Dial   DialFunc

	// Transcript receives the conversation; one is created when nil.
	Transcript *transcript.Buffer

	// Metrics receives throughput counters; one is created when nil.
	Metrics *MetricsCollector
}

// Session is one voice conversation from dial to teardown. Not
// reusable; create a new Session for each conversation.
type Session struct {
	cfg  Config
	deps Deps

	mu       sync.Mutex
	state    State
	onChange func(State)

	capture   *capture.Pipeline
	scheduler *playback.Scheduler
	tr        transport.Transport

	teardownOnce sync.Once
	trCloseOnce  sync.Once
	done         chan struct{}
}

// New builds a session. Deps.Source, Deps.Output and Deps.Dial are
// required.
func New(cfg Config, deps Deps) (*Session, error) {
	if deps.Source == nil || deps.Output == nil || deps.Dial == nil {
		return nil, errors.New("session: source, output and dial are required")
	}
	if deps.Transcript == nil {
		deps.Transcript = transcript.New()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetricsCollector()
	}
	if cfg.CaptureRate <= 0 {
		cfg.CaptureRate = capture.DefaultRate
	}
	if cfg.PlaybackRate <= 0 {
		cfg.PlaybackRate = playback.DefaultRate
	}
	return &Session{
		cfg:  cfg,
		deps: deps,
		done: make(chan struct{}),
	}, nil
}

// Transcript exposes the conversation log.
func (s *Session) Transcript() *transcript.Buffer {
	return s.deps.Transcript
}

// Metrics exposes the session counters.
func (s *Session) Metrics() *MetricsCollector {
	return s.deps.Metrics
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetOnChange registers a state listener. It runs on whichever
// goroutine drives the transition.
func (s *Session) SetOnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Done is closed when the session reaches Closed or Failed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start acquires the microphone, dials the transport and hands control
// to the event loop. The microphone is claimed before the dial so a
// missing device fails fast without a wasted connection; captured
// frames are discarded until the remote confirms the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.state = StateConnecting
	onChange := s.onChange
	s.mu.Unlock()
	if onChange != nil {
		onChange(StateConnecting)
	}

	s.scheduler = playback.New(s.deps.Output, s.cfg.PlaybackRate)
	s.capture = capture.New(s.deps.Source, s.cfg.CaptureRate, s.sendFrame)

	if err := s.capture.Start(ctx); err != nil {
		s.fail(fmt.Errorf("session: capture: %w", err))
		return err
	}

	instructions := persona.Instructions(s.cfg.Persona, s.cfg.Language, s.cfg.Analysis)

	tr, err := s.deps.Dial(ctx, instructions)
	if err != nil {
		err = fmt.Errorf("session: dial: %w", err)
		s.fail(err)
		return err
	}

	// Stop may have raced the dial. The session has already settled in
	// a terminal state, so the freshly dialed transport must be closed
	// here; it was never published and never gets an event loop.
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		tr.Close()
		return nil
	}
	s.tr = tr
	s.mu.Unlock()

	log.Info("session connecting", "persona", s.cfg.Persona, "language", s.cfg.Language)

	go s.run(tr)
	return nil
}

// sendFrame is the capture sink. Frames only go out while the session
// is active; anything captured earlier or later is dropped.
func (s *Session) sendFrame(frame []byte, rate int) {
	s.mu.Lock()
	active := s.state == StateActive
	tr := s.tr
	s.mu.Unlock()

	if !active || tr == nil {
		s.deps.Metrics.AddDropped()
		return
	}

	payload := transport.EncodeChunk(frame)
	mime := transport.MimeDescriptor(rate)
	if err := tr.SendAudio(payload, mime); err != nil {
		log.Warn("session: send audio failed", "error", err)
		return
	}
	s.deps.Metrics.AddSent(len(frame))
}

// run is the session's event loop; every transport event is handled
// here, on one goroutine, so handlers never race each other.
func (s *Session) run(tr transport.Transport) {
	for ev := range tr.Events() {
		switch ev := ev.(type) {
		case transport.OpenEvent:
			if s.activate() {
				s.deps.Metrics.MarkConnected()
				log.Info("session active")
			}

		case transport.UserTextEvent:
			s.deps.Transcript.Add(transcript.SenderUser, ev.Text)

		case transport.AgentTextEvent:
			s.deps.Transcript.Add(transcript.SenderAgent, ev.Text)

		case transport.AudioEvent:
			if err := s.scheduler.Enqueue(ev.PCM, ev.SampleRate); err != nil {
				log.Warn("session: bad audio chunk dropped", "error", err)
				continue
			}
			s.deps.Metrics.AddReceived(len(ev.PCM))

		case transport.InterruptedEvent:
			s.scheduler.Flush()
			s.deps.Metrics.AddInterrupt()
			log.Debug("session: barge-in, playback flushed")

		case transport.ClosedEvent:
			log.Info("session: remote closed")

		case transport.ErrorEvent:
			log.Error("session: transport failed", "error", ev.Err)
			s.finish(StateFailed)
			return
		}
	}

	// Event channel closed: orderly shutdown.
	s.finish(StateClosed)
}

// Stop ends the session and releases every resource. Safe to call more
// than once and from any goroutine; it returns after teardown is
// complete.
func (s *Session) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return nil
	case StateClosed, StateFailed:
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.state = StateClosing
	onChange := s.onChange
	tr := s.tr
	s.mu.Unlock()
	if onChange != nil {
		onChange(StateClosing)
	}

	// Closing the transport ends the event loop, which finishes the
	// teardown and settles the final state.
	if tr != nil {
		s.closeTransport(tr)
		<-s.done
		return nil
	}

	s.finish(StateClosed)
	return nil
}

// fail tears down after a startup error, before the event loop exists.
func (s *Session) fail(err error) {
	log.Error("session start failed", "error", err)
	s.finish(StateFailed)
}

// finish runs the teardown exactly once and settles the final state.
// Every release is attempted even when an earlier one fails.
func (s *Session) finish(final State) {
	s.teardownOnce.Do(func() {
		if s.capture != nil {
			if err := s.capture.Stop(); err != nil {
				log.Warn("session: capture stop failed", "error", err)
			}
		}
		s.mu.Lock()
		tr := s.tr
		s.mu.Unlock()
		if tr != nil {
			s.closeTransport(tr)
		}
		if s.scheduler != nil {
			if err := s.scheduler.Teardown(); err != nil {
				log.Warn("session: playback teardown failed", "error", err)
			}
		}
		if err := s.deps.Source.Close(); err != nil {
			log.Warn("session: source close failed", "error", err)
		}

		s.setState(final)
		close(s.done)
		log.Info("session finished", "state", final)
	})
}

// closeTransport guarantees exactly one Close on the transport no
// matter how many exit paths race to it.
func (s *Session) closeTransport(tr transport.Transport) {
	s.trCloseOnce.Do(func() {
		if err := tr.Close(); err != nil {
			log.Warn("session: transport close failed", "error", err)
		}
	})
}

// activate moves Connecting to Active. A confirmation that arrives
// after the session began closing is ignored; the lifecycle only moves
// forward, never back out of Closing or a terminal state.
func (s *Session) activate() bool {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return false
	}
	s.state = StateActive
	onChange := s.onChange
	s.mu.Unlock()
	if onChange != nil {
		onChange(StateActive)
	}
	return true
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	onChange := s.onChange
	s.mu.Unlock()
	if onChange != nil {
		onChange(st)
	}
}
