package transport

import (
	"context"
	"encoding/json"
	"testing"
)

func decodeTestMessage(t *testing.T, raw string) []Event {
	t.Helper()

	var msg map[string]any
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("bad test message: %v", err)
	}

	g := &Gemini{cfg: GeminiConfig{}}
	return g.decodeServerMessage(msg)
}

func TestDecodeSetupComplete(t *testing.T) {
	events := decodeTestMessage(t, `{"setupComplete": {}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if _, ok := events[0].(OpenEvent); !ok {
		t.Errorf("expected OpenEvent, got %T", events[0])
	}
}

func TestDecodeInputTranscription(t *testing.T) {
	events := decodeTestMessage(t,
		`{"serverContent": {"inputTranscription": {"text": "what is in my fridge"}}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(UserTextEvent)
	if !ok {
		t.Fatalf("expected UserTextEvent, got %T", events[0])
	}
	if ev.Text != "what is in my fridge" {
		t.Errorf("unexpected text: %q", ev.Text)
	}
}

func TestDecodeOutputTranscription(t *testing.T) {
	events := decodeTestMessage(t,
		`{"serverContent": {"outputTranscription": {"text": "Let me take a look"}}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(AgentTextEvent)
	if !ok {
		t.Fatalf("expected AgentTextEvent, got %T", events[0])
	}
	if ev.Text != "Let me take a look" {
		t.Errorf("unexpected text: %q", ev.Text)
	}
	if !ev.Partial {
		t.Error("agent fragments should be marked partial")
	}
}

func TestDecodeAudioChunk(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	payload := EncodeChunk(pcm)

	events := decodeTestMessage(t,
		`{"serverContent": {"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "`+payload+`"}}]}}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(AudioEvent)
	if !ok {
		t.Fatalf("expected AudioEvent, got %T", events[0])
	}
	if ev.SampleRate != 24000 {
		t.Errorf("expected rate 24000, got %d", ev.SampleRate)
	}
	if len(ev.PCM) != len(pcm) {
		t.Errorf("expected %d bytes, got %d", len(pcm), len(ev.PCM))
	}
}

func TestDecodeAudioChunkDefaultRate(t *testing.T) {
	payload := EncodeChunk([]byte{0x01, 0x02})

	events := decodeTestMessage(t,
		`{"serverContent": {"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm", "data": "`+payload+`"}}]}}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0].(AudioEvent)
	if ev.SampleRate != 24000 {
		t.Errorf("expected default rate 24000, got %d", ev.SampleRate)
	}
}

func TestDecodeInterrupted(t *testing.T) {
	events := decodeTestMessage(t, `{"serverContent": {"interrupted": true}}`)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if _, ok := events[0].(InterruptedEvent); !ok {
		t.Errorf("expected InterruptedEvent, got %T", events[0])
	}
}

func TestDecodeInterruptedWithTrailingAudio(t *testing.T) {
	payload := EncodeChunk([]byte{0x01, 0x02})

	events := decodeTestMessage(t,
		`{"serverContent": {"interrupted": true, "modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "`+payload+`"}}]}}}`)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// The interrupt must come first so the session flushes before the
	// stale chunk is seen.
	if _, ok := events[0].(InterruptedEvent); !ok {
		t.Errorf("expected InterruptedEvent first, got %T", events[0])
	}
	if _, ok := events[1].(AudioEvent); !ok {
		t.Errorf("expected AudioEvent second, got %T", events[1])
	}
}

func TestDecodeUnknownMessage(t *testing.T) {
	events := decodeTestMessage(t, `{"usageMetadata": {"totalTokenCount": 42}}`)
	if len(events) != 0 {
		t.Errorf("expected no events for unknown message, got %d", len(events))
	}
}

func TestDecodeBadAudioSkipped(t *testing.T) {
	events := decodeTestMessage(t,
		`{"serverContent": {"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "!!not base64!!"}}]}}}`)
	if len(events) != 0 {
		t.Errorf("expected bad chunk to be skipped, got %d events", len(events))
	}
}

func TestDialRequiresAPIKey(t *testing.T) {
	_, err := DialGemini(context.Background(), GeminiConfig{})
	if err == nil {
		t.Error("expected error without API key")
	}
}
