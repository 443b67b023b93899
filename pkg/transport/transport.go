// Package transport defines the duplex channel the session engine
// speaks over, the text-safe chunk encoding used on it, and a Gemini
// Live implementation over websocket.
//
// Inbound traffic is decoded into tagged event variants so the session
// can dispatch with an exhaustive type switch instead of nested
// callback branching; a new event kind cannot be silently ignored.
package transport

import "errors"

// ErrNotConnected is returned when sending on a closed or never-opened
// transport.
var ErrNotConnected = errors.New("transport: not connected")

// Transport is a duplex audio channel to the remote conversational
// endpoint. Implementations must make SendAudio safe for concurrent use
// and must close the Events channel once no further events will arrive.
type Transport interface {
	// SendAudio transmits one outbound chunk. The payload is the
	// base64 chunk encoding; mime describes its format and rate.
	SendAudio(payload string, mime string) error

	// Events returns the inbound event stream. The channel is closed
	// after a ClosedEvent or ErrorEvent is delivered.
	Events() <-chan Event

	// Close shuts the channel down. Safe to call more than once.
	Close() error
}

// Event is one inbound message from the remote endpoint.
type Event interface {
	isEvent()
}

// OpenEvent signals the remote confirmed the channel is ready.
type OpenEvent struct{}

// UserTextEvent carries a transcript fragment of the user's speech.
type UserTextEvent struct {
	Text    string
	Partial bool
}

// AgentTextEvent carries a transcript fragment of the agent's speech.
type AgentTextEvent struct {
	Text    string
	Partial bool
}

// AudioEvent carries one decoded chunk of synthesized speech.
type AudioEvent struct {
	PCM        []byte
	SampleRate int
}

// InterruptedEvent signals the user barged in; local playback must stop
// immediately.
type InterruptedEvent struct{}

// ClosedEvent signals an orderly remote close.
type ClosedEvent struct{}

// ErrorEvent signals a transport failure; the session tears down.
type ErrorEvent struct {
	Err error
}

func (OpenEvent) isEvent()        {}
func (UserTextEvent) isEvent()    {}
func (AgentTextEvent) isEvent()   {}
func (AudioEvent) isEvent()       {}
func (InterruptedEvent) isEvent() {}
func (ClosedEvent) isEvent()      {}
func (ErrorEvent) isEvent()       {}
