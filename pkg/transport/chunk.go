package transport

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeChunk wraps raw PCM bytes in the transport's text-safe payload
// representation (standard base64).
func EncodeChunk(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeChunk recovers raw PCM bytes from a transport payload.
func DecodeChunk(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: decode chunk: %w", err)
	}
	return data, nil
}

// MimeDescriptor builds the descriptor attached to each outbound chunk
// so the remote endpoint can interpret it without a handshake,
// e.g. "audio/pcm;rate=16000".
func MimeDescriptor(sampleRate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", sampleRate)
}

// ParseMimeRate extracts the sample rate from a MIME descriptor.
// Returns false if the descriptor carries no rate parameter.
func ParseMimeRate(mime string) (int, bool) {
	for _, part := range strings.Split(mime, ";") {
		part = strings.TrimSpace(part)
		if rest, ok := strings.CutPrefix(part, "rate="); ok {
			rate, err := strconv.Atoi(rest)
			if err != nil || rate <= 0 {
				return 0, false
			}
			return rate, true
		}
	}
	return 0, false
}
