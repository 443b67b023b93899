package session

import (
	"fmt"
	"sync"
	"time"
)

// Metrics tracks throughput and latency of one voice session.
// Latencies are measured from the moment the connection opened.
type Metrics struct {
	ConnectedAt    time.Time     `json:"connected_at"`
	FirstAudioTime time.Time     `json:"first_audio_time"`
	FirstAudioLag  time.Duration `json:"first_audio_lag"`

	// Counts for the whole session
	ChunksSent     int   `json:"chunks_sent"`
	ChunksReceived int   `json:"chunks_received"`
	BytesSent      int64 `json:"bytes_sent"`
	BytesReceived  int64 `json:"bytes_received"`
	Interrupts     int   `json:"interrupts"`
	DroppedFrames  int   `json:"dropped_frames"`
}

// MetricsCollector accumulates session metrics. It is goroutine-safe;
// the capture sink and the event loop both feed it.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics

	onUpdate func(Metrics)
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// OnUpdate sets a callback that fires whenever metrics change.
func (m *MetricsCollector) OnUpdate(fn func(Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// MarkConnected records when the remote confirmed the session.
func (m *MetricsCollector) MarkConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ConnectedAt = time.Now()
	m.notify()
}

// AddSent records one outbound chunk.
func (m *MetricsCollector) AddSent(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ChunksSent++
	m.current.BytesSent += int64(bytes)
	m.notify()
}

// AddReceived records one inbound audio chunk; the first one stamps the
// response latency.
func (m *MetricsCollector) AddReceived(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ChunksReceived++
	m.current.BytesReceived += int64(bytes)
	if m.current.FirstAudioTime.IsZero() {
		m.current.FirstAudioTime = time.Now()
		if !m.current.ConnectedAt.IsZero() {
			m.current.FirstAudioLag = m.current.FirstAudioTime.Sub(m.current.ConnectedAt)
		}
	}
	m.notify()
}

// AddInterrupt records one barge-in.
func (m *MetricsCollector) AddInterrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Interrupts++
	m.notify()
}

// AddDropped records one frame discarded before the session was active.
func (m *MetricsCollector) AddDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.DroppedFrames++
}

// Snapshot returns a copy of the current metrics.
func (m *MetricsCollector) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Summary formats the session counters for display.
func (m *MetricsCollector) Summary() string {
	s := m.Snapshot()
	return fmt.Sprintf(
		"sent %d chunks (%d bytes), received %d chunks (%d bytes), %d interrupts, first audio after %v",
		s.ChunksSent, s.BytesSent, s.ChunksReceived, s.BytesReceived,
		s.Interrupts, s.FirstAudioLag.Round(time.Millisecond),
	)
}

func (m *MetricsCollector) notify() {
	if m.onUpdate != nil {
		go m.onUpdate(m.current)
	}
}
