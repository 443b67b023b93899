package audioio

import (
	"github.com/vishalgiri25/fridge-critic/internal/log"
)

// NewSource opens a capture device for the configured backend. Auto
// tries real hardware first and falls back to the synthetic source so
// a machine without a microphone can still run a session.
func NewSource(cfg Config) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendPortAudio:
		return NewPortAudioSource(cfg)
	case BackendMock:
		return NewMockSource(cfg)
	default:
		src, err := NewPortAudioSource(cfg)
		if err != nil {
			log.Warn("no capture device, using synthetic source", "error", err)
			return NewMockSource(cfg)
		}
		return src, nil
	}
}

// NewOutput opens a playback device for the configured backend.
func NewOutput(cfg Config) (Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendPortAudio:
		return NewPortAudioOutput(cfg)
	case BackendMock:
		return NewMockOutput(cfg.SampleRate), nil
	default:
		out, err := NewPortAudioOutput(cfg)
		if err != nil {
			log.Warn("no playback device, using mock output", "error", err)
			return NewMockOutput(cfg.SampleRate), nil
		}
		return out, nil
	}
}
