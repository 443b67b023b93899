// Package audioio abstracts the host audio devices behind a capture
// Source and a playback Output. The portaudio backend drives real
// hardware; the mock backend gives tests a deterministic clock and a
// synthetic microphone.
package audioio

import "errors"

var (
	// ErrDeviceUnavailable means no usable audio device was found or
	// the backend could not be initialized.
	ErrDeviceUnavailable = errors.New("audioio: device unavailable")

	// ErrPermissionDenied means the host refused access to the device.
	ErrPermissionDenied = errors.New("audioio: permission denied")
)

// Backend selects the device implementation.
type Backend string

const (
	BackendAuto      Backend = "auto"
	BackendPortAudio Backend = "portaudio"
	BackendMock      Backend = "mock"
)

// Config describes how to open a device.
type Config struct {
	Backend    Backend
	SampleRate int
	Channels   int

	// BlockSize is the number of frames delivered per capture block.
	BlockSize int

	// Device names a specific device; empty picks the default.
	Device string
}

// Validate fills defaults and rejects impossible configurations.
func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.SampleRate <= 0 {
		return errors.New("audioio: sample rate must be positive")
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.BlockSize <= 0 {
		c.BlockSize = 4096
	}
	return nil
}
