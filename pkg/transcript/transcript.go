// Package transcript accumulates the conversation as display-ready
// entries.
package transcript

import (
	"sync"

	"github.com/google/uuid"
)

// Sender identifies who produced an entry.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Entry is one utterance in the conversation.
type Entry struct {
	ID     string `json:"id"`
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Notify is called after every mutation with a snapshot of the log.
type Notify func(entries []Entry)

// Buffer holds the conversation log. Agent speech arrives as a stream
// of fragments, so consecutive agent additions are coalesced into the
// entry they continue; user entries always stand alone.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	notify  Notify
}

func New() *Buffer {
	return &Buffer{}
}

// SetNotify registers a listener for transcript changes. The listener
// runs on the caller's goroutine with a defensive copy.
func (b *Buffer) SetNotify(fn Notify) {
	b.mu.Lock()
	b.notify = fn
	b.mu.Unlock()
}

// Add appends text from a sender. Empty text is ignored. A fragment
// from the agent extends the last entry when the agent also produced
// it; any user utterance in between breaks the chain.
func (b *Buffer) Add(sender Sender, text string) {
	if text == "" {
		return
	}

	b.mu.Lock()

	n := len(b.entries)
	if sender == SenderAgent && n > 0 && b.entries[n-1].Sender == SenderAgent {
		b.entries[n-1].Text += text
	} else {
		b.entries = append(b.entries, Entry{
			ID:     uuid.New().String(),
			Sender: sender,
			Text:   text,
		})
	}

	notify := b.notify
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// Entries returns a copy of the log.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Len reports the number of entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Clear resets the log for a new session.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(nil)
	}
}

func (b *Buffer) snapshotLocked() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}
