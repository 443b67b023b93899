// Package pcm converts between floating-point audio samples and 16-bit
// signed little-endian PCM frames, and provides the sample-rate
// conversion used by the capture pipeline. Everything here is pure and
// hardware-free so it can be tested without real audio devices.
package pcm

import (
	"errors"
	"math"
)

// ErrMalformedFrame is returned when a byte frame cannot be interpreted
// as whole little-endian 16-bit samples.
var ErrMalformedFrame = errors.New("pcm: malformed frame")

// FloatToPCM16 encodes floating-point samples in [-1, 1] as PCM16
// little-endian bytes. Out-of-range samples are clamped, not rejected.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Round(float64(s) * 32768)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		n := int16(v)
		out[i*2] = byte(n)
		out[i*2+1] = byte(n >> 8)
	}
	return out
}

// PCM16ToFloat decodes PCM16 little-endian bytes into floating-point
// samples. Returns ErrMalformedFrame if the length is not a multiple
// of 2.
func PCM16ToFloat(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, ErrMalformedFrame
	}
	out := make([]float32, len(data)/2)
	for i := range out {
		n := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float32(n) / 32768.0
	}
	return out, nil
}

// PCM16ToFloatChannels decodes interleaved multi-channel PCM16 bytes
// into per-channel sample slices. Frame count is len(data)/2/channels.
// Returns ErrMalformedFrame if the data does not divide evenly.
func PCM16ToFloatChannels(data []byte, channels int) ([][]float32, error) {
	if channels <= 0 {
		return nil, ErrMalformedFrame
	}
	if len(data)%(2*channels) != 0 {
		return nil, ErrMalformedFrame
	}
	frames := len(data) / 2 / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			n := int16(data[off]) | int16(data[off+1])<<8
			out[ch][i] = float32(n) / 32768.0
		}
	}
	return out, nil
}

// SamplesFromFrame converts PCM16 little-endian bytes to int16 samples.
// Unlike BytesToSamples it rejects frames with a trailing odd byte.
func SamplesFromFrame(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, ErrMalformedFrame
	}
	return BytesToSamples(data), nil
}
