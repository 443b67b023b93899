package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vishalgiri25/fridge-critic/pkg/debug"
)

const (
	// Gemini Live API WebSocket endpoint
	geminiLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// Default model for Gemini Live
	geminiDefaultModel = "models/gemini-2.5-flash-native-audio-preview-12-2025"

	// Default voice for synthesized speech
	geminiDefaultVoice = "Zephyr"

	// Synthesized output arrives at 24kHz unless the chunk descriptor
	// says otherwise.
	geminiOutputRate = 24000
)

// GeminiConfig holds the connection parameters for a Gemini Live
// session.
type GeminiConfig struct {
	APIKey string

	// Model overrides the default live model.
	Model string

	// Voice selects the prebuilt voice for synthesized speech.
	Voice string

	// SystemInstruction is the persona/language prompt for the session.
	SystemInstruction string

	// Endpoint overrides the websocket URL (used by tests).
	Endpoint string

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
}

// Gemini implements Transport over Google's Gemini Live API.
// One instance serves exactly one session; it is not reusable after
// Close.
type Gemini struct {
	cfg GeminiConfig

	ws   *websocket.Conn
	wsMu sync.Mutex

	mu     sync.Mutex
	closed bool

	events chan Event
}

var _ Transport = (*Gemini)(nil)

// DialGemini opens the websocket, sends the session setup and starts
// the reader. The returned transport emits OpenEvent once the remote
// confirms setup.
func DialGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transport: missing API key")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = geminiLiveURL
	}
	timeout := cfg.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	url := fmt.Sprintf("%s?key=%s", endpoint, cfg.APIKey)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}

	ws, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to connect: %w", err)
	}

	g := &Gemini{
		cfg:    cfg,
		ws:     ws,
		events: make(chan Event, 64),
	}

	if err := g.sendSetup(); err != nil {
		g.Close()
		return nil, fmt.Errorf("transport: failed to configure session: %w", err)
	}

	go g.readLoop()

	debug.Logln("🌟 Gemini Live connected")

	return g, nil
}

// sendSetup sends the initial configuration to Gemini Live.
func (g *Gemini) sendSetup() error {
	model := g.cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}
	voice := g.cfg.Voice
	if voice == "" {
		voice = geminiDefaultVoice
	}

	setup := map[string]any{
		"setup": map[string]any{
			"model": model,
			"generation_config": map[string]any{
				"response_modalities": []string{"AUDIO"},
				"speech_config": map[string]any{
					"voice_config": map[string]any{
						"prebuilt_voice_config": map[string]any{
							"voice_name": voice,
						},
					},
				},
			},
			"system_instruction": map[string]any{
				"parts": []map[string]any{
					{"text": g.cfg.SystemInstruction},
				},
			},
			"input_audio_transcription":  map[string]any{},
			"output_audio_transcription": map[string]any{},
		},
	}

	return g.sendJSON(setup)
}

// SendAudio transmits one base64-encoded PCM chunk tagged with its MIME
// descriptor.
func (g *Gemini) SendAudio(payload string, mime string) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrNotConnected
	}
	g.mu.Unlock()

	msg := map[string]any{
		"realtime_input": map[string]any{
			"media_chunks": []map[string]any{
				{
					"data":      payload,
					"mime_type": mime,
				},
			},
		},
	}

	return g.sendJSON(msg)
}

// Events returns the inbound event stream.
func (g *Gemini) Events() <-chan Event {
	return g.events
}

// Close shuts the websocket down. Safe to call more than once; the
// reader drains and closes the event channel.
func (g *Gemini) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	return g.ws.Close()
}

// readLoop decodes every server message into tagged events until the
// socket dies.
func (g *Gemini) readLoop() {
	defer close(g.events)

	for {
		_, message, err := g.ws.ReadMessage()
		if err != nil {
			g.mu.Lock()
			closed := g.closed
			g.closed = true
			g.mu.Unlock()

			if closed {
				g.emit(ClosedEvent{})
			} else {
				g.ws.Close()
				g.emit(ErrorEvent{Err: err})
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			debug.WireLog("🌟 Gemini: failed to parse message: %v\n", err)
			continue
		}

		for _, ev := range g.decodeServerMessage(msg) {
			g.emit(ev)
		}
	}
}

// decodeServerMessage maps one Gemini Live server message to zero or
// more events. Unknown message kinds decode to nothing.
func (g *Gemini) decodeServerMessage(msg map[string]any) []Event {
	if _, ok := msg["setupComplete"]; ok {
		debug.Logln("🌟 Gemini Live session ready")
		return []Event{OpenEvent{}}
	}

	if serverContent, ok := msg["serverContent"].(map[string]any); ok {
		return g.decodeServerContent(serverContent)
	}

	debug.WireLog("🌟 Gemini message ignored: %v\n", msg)
	return nil
}

// decodeServerContent handles audio, transcripts and control signals.
func (g *Gemini) decodeServerContent(content map[string]any) []Event {
	var events []Event

	if interrupted, ok := content["interrupted"].(bool); ok && interrupted {
		events = append(events, InterruptedEvent{})
	}

	if inputTranscript, ok := content["inputTranscription"].(map[string]any); ok {
		if text, ok := inputTranscript["text"].(string); ok && text != "" {
			events = append(events, UserTextEvent{Text: text, Partial: false})
		}
	}

	if outputTranscript, ok := content["outputTranscription"].(map[string]any); ok {
		if text, ok := outputTranscript["text"].(string); ok && text != "" {
			events = append(events, AgentTextEvent{Text: text, Partial: true})
		}
	}

	if modelTurn, ok := content["modelTurn"].(map[string]any); ok {
		if parts, ok := modelTurn["parts"].([]any); ok {
			for _, part := range parts {
				partMap, ok := part.(map[string]any)
				if !ok {
					continue
				}
				inlineData, ok := partMap["inlineData"].(map[string]any)
				if !ok {
					continue
				}
				data, _ := inlineData["data"].(string)
				if data == "" {
					continue
				}
				pcm, err := DecodeChunk(data)
				if err != nil || len(pcm) == 0 {
					debug.WireLog("🌟 Gemini: bad audio chunk: %v\n", err)
					continue
				}
				rate := geminiOutputRate
				if mime, ok := inlineData["mimeType"].(string); ok {
					if r, ok := ParseMimeRate(mime); ok {
						rate = r
					}
				}
				events = append(events, AudioEvent{PCM: pcm, SampleRate: rate})
			}
		}
	}

	// turnComplete carries no payload the session needs; the transcript
	// coalesces agent fragments by sender adjacency instead.
	return events
}

func (g *Gemini) emit(ev Event) {
	select {
	case g.events <- ev:
	default:
		// Event buffer full. Audio must not be silently skipped, so
		// block for it; everything else is droppable under pressure.
		switch ev.(type) {
		case AudioEvent, InterruptedEvent, ClosedEvent, ErrorEvent:
			g.events <- ev
		default:
			debug.WireLog("🌟 Gemini: dropping event %T under backpressure\n", ev)
		}
	}
}

func (g *Gemini) sendJSON(v any) error {
	g.wsMu.Lock()
	defer g.wsMu.Unlock()

	if g.ws == nil {
		return ErrNotConnected
	}

	return g.ws.WriteJSON(v)
}
