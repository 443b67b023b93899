package audioio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// findDevice resolves a device by case-insensitive substring match on
// its name. input selects capture devices, otherwise playback devices.
func findDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(name)
	for _, d := range devices {
		if input && d.MaxInputChannels == 0 {
			continue
		}
		if !input && d.MaxOutputChannels == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(d.Name), want) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no device matching %q", name)
}

// openInputStream opens a capture stream on the configured device, or
// the default input device when none is named.
func openInputStream(cfg Config, callback func([]int16)) (*portaudio.Stream, error) {
	if cfg.Device == "" {
		return portaudio.OpenDefaultStream(
			cfg.Channels, 0, float64(cfg.SampleRate), cfg.BlockSize, callback)
	}

	dev, err := findDevice(cfg.Device, true)
	if err != nil {
		return nil, err
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: cfg.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.BlockSize,
	}
	return portaudio.OpenStream(params, callback)
}

// openOutputStream opens a playback stream on the configured device, or
// the default output device when none is named.
func openOutputStream(cfg Config, callback func([]int16)) (*portaudio.Stream, error) {
	if cfg.Device == "" {
		return portaudio.OpenDefaultStream(
			0, cfg.Channels, float64(cfg.SampleRate), cfg.BlockSize, callback)
	}

	dev, err := findDevice(cfg.Device, false)
	if err != nil {
		return nil, err
	}
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: cfg.Channels,
			Latency:  dev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.BlockSize,
	}
	return portaudio.OpenStream(params, callback)
}
