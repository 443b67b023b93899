// Package web serves a live monitor for a running session: state,
// transcript and metrics over REST, plus a websocket event stream.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/hub"
	"github.com/vishalgiri25/fridge-critic/pkg/session"
	"github.com/vishalgiri25/fridge-critic/pkg/transcript"
)

// StreamEvent is one message on the /ws/events stream.
type StreamEvent struct {
	Time  string            `json:"time"`
	Kind  string            `json:"kind"` // state, transcript, metrics
	State string            `json:"state,omitempty"`
	Entry *transcript.Entry `json:"entry,omitempty"`
	Stats *session.Metrics  `json:"stats,omitempty"`
}

// Server is the monitor server for one session.
type Server struct {
	app  *fiber.App
	port string

	sess *session.Session

	stateMu sync.RWMutex
	state   string

	eventHub *hub.Hub
}

// NewServer wires the monitor to a session. It subscribes to state,
// transcript and metrics changes; call Attach before the session
// starts so no transition is missed.
func NewServer(port string, sess *session.Session) *Server {
	s := &Server{
		port:     port,
		sess:     sess,
		state:    sess.State().String(),
		eventHub: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Fridge Critic Monitor",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/transcript", s.handleTranscript)
	api.Get("/metrics", s.handleMetrics)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Attach hooks the server into the session's callbacks.
func (s *Server) Attach() {
	s.sess.SetOnChange(func(st session.State) {
		s.stateMu.Lock()
		s.state = st.String()
		s.stateMu.Unlock()

		s.eventHub.BroadcastJSON(StreamEvent{
			Time:  time.Now().Format("15:04:05"),
			Kind:  "state",
			State: st.String(),
		})
	})

	s.sess.Transcript().SetNotify(s.NotifyTranscript)

	s.sess.Metrics().OnUpdate(func(m session.Metrics) {
		s.eventHub.BroadcastJSON(StreamEvent{
			Time:  time.Now().Format("15:04:05"),
			Kind:  "metrics",
			Stats: &m,
		})
	})
}

// NotifyTranscript broadcasts the latest transcript entry. Exposed so
// a caller that replaces the transcript notify hook can keep the
// monitor in the chain.
func (s *Server) NotifyTranscript(entries []transcript.Entry) {
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	s.eventHub.BroadcastJSON(StreamEvent{
		Time:  time.Now().Format("15:04:05"),
		Kind:  "transcript",
		Entry: &last,
	})
}

// StartAsync serves in the background.
func (s *Server) StartAsync() {
	go s.eventHub.Run()
	go func() {
		log.Info("monitor listening", "port", s.port)
		if err := s.app.Listen(":" + s.port); err != nil {
			log.Error("monitor server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
